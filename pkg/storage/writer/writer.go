// Package writer provides an asynchronous, serialized writer for the scratch
// transcript using the provided storage.Driver.
//
// The writer decouples persistence from the chat loop so that a slow disk
// never stalls rendering. Scratch writes are whole-file overwrites, so only
// the newest pending transcript is kept: an enqueue replaces any transcript
// still waiting, and a single worker goroutine writes it. The last enqueued
// transcript is always the one left on disk.
package writer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/papercomputeco/notechat/pkg/logger"
	"github.com/papercomputeco/notechat/pkg/storage"
)

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("writer closed")

// Config is the configuration options for the writer.
type Config struct {
	// Driver is the storage backend receiving scratch writes.
	Driver storage.Driver

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Writer persists scratch transcripts on a single background goroutine.
type Writer struct {
	driver storage.Driver
	logger *slog.Logger
	wg     sync.WaitGroup

	// wake signals the worker that pending holds a transcript.
	wake chan struct{}

	// barriers carries Flush requests; closed by Close.
	barriers chan chan struct{}

	mu     sync.RWMutex
	closed bool

	pendingMu sync.Mutex
	pending   *string
}

// New creates a Writer and starts its worker goroutine.
func New(c *Config) (*Writer, error) {
	if c.Driver == nil {
		return nil, errors.New("writer requires a storage driver")
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	w := &Writer{
		driver:   c.Driver,
		logger:   c.Logger,
		wake:     make(chan struct{}, 1),
		barriers: make(chan chan struct{}),
	}

	w.wg.Add(1)
	go w.worker()

	return w, nil
}

// Enqueue submits a scratch transcript for writing, replacing one that is
// still waiting. Returns false only when the writer is closed.
func (w *Writer) Enqueue(content string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		w.logger.Error("scratch write dropped, writer closed")
		return false
	}

	w.pendingMu.Lock()
	if w.pending != nil {
		w.logger.Debug("scratch write superseded", "bytes", len(*w.pending))
	}
	w.pending = &content
	w.pendingMu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}

	w.logger.Debug("scratch write queued", "bytes", len(content))
	return true
}

// Flush blocks until every write enqueued before the call has been
// attempted, or ctx is done.
func (w *Writer) Flush(ctx context.Context) error {
	done := make(chan struct{})

	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return ErrClosed
	}
	select {
	case w.barriers <- done:
		w.mu.RUnlock()
	case <-ctx.Done():
		w.mu.RUnlock()
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting writes and waits for the pending write to land.
// It is safe to call more than once.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.barriers)
	w.mu.Unlock()

	w.wg.Wait()
}

// worker is the inner worker thread that writes whatever is pending each
// time it is woken or asked to flush.
func (w *Writer) worker() {
	defer w.wg.Done()
	w.logger.Debug("scratch writer started")

	for {
		select {
		case <-w.wake:
			w.writePending()

		case done, ok := <-w.barriers:
			w.writePending()
			if !ok {
				w.logger.Debug("scratch writer stopped")
				return
			}
			close(done)
		}
	}
}

func (w *Writer) writePending() {
	w.pendingMu.Lock()
	content := w.pending
	w.pending = nil
	w.pendingMu.Unlock()

	if content == nil {
		return
	}

	if err := w.driver.WriteScratch(context.Background(), *content); err != nil {
		w.logger.Error("scratch write failed", "error", err)
		return
	}
	w.logger.Debug("scratch transcript written", "bytes", len(*content))
}
