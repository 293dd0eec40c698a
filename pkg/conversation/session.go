// Package conversation owns the turns of one chat and drives completion
// calls against them, mirroring every settled state to the scratch
// transcript and archiving finished chats as history snapshots.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/papercomputeco/notechat/pkg/completion"
	"github.com/papercomputeco/notechat/pkg/config"
	"github.com/papercomputeco/notechat/pkg/llm"
	"github.com/papercomputeco/notechat/pkg/logger"
	"github.com/papercomputeco/notechat/pkg/storage"
	"github.com/papercomputeco/notechat/pkg/storage/writer"
	"github.com/papercomputeco/notechat/pkg/transcript"
)

var (
	// ErrBusy is returned when a request is already in flight.
	ErrBusy = errors.New("a request is already in flight")

	// ErrEmptyMessage is returned for a send with no text and no attachments.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrNoUserTurn is returned by Regenerate on a conversation without a
	// user turn.
	ErrNoUserTurn = errors.New("no user turn to regenerate from")

	// ErrNotUserTurn is returned by Edit when the index does not name a
	// user turn.
	ErrNotUserTurn = errors.New("only user turns can be edited")
)

// Completer runs one completion call. *completion.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, cfg completion.RequestConfig, turns []llm.Turn, onDelta func(string)) (string, error)
}

// KeyFunc resolves the API key for the configuration in effect.
type KeyFunc func(cfg config.Config) (string, error)

// Config configures a Session.
type Config struct {
	// Completer executes requests.
	Completer Completer

	// Store is read at every send.
	Store config.Store

	// Key resolves the API key. Nil means no key.
	Key KeyFunc

	// Driver holds the scratch transcript and history snapshots.
	Driver storage.Driver

	// Writer serializes scratch writes. When nil the session creates and
	// owns one on Driver.
	Writer *writer.Writer

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// Session is one conversation. Only one request runs at a time.
type Session struct {
	completer Completer
	store     config.Store
	key       KeyFunc
	driver    storage.Driver
	writer    *writer.Writer
	ownWriter bool
	now       func() time.Time
	logger    *slog.Logger

	log *Log

	mu   sync.Mutex
	busy bool
	// idle is closed whenever no request is in flight.
	idle chan struct{}
}

// New creates a Session. Call Restore to pick up the previous scratch
// transcript.
func New(c *Config) (*Session, error) {
	if c.Completer == nil {
		return nil, errors.New("session requires a completer")
	}
	if c.Store == nil {
		return nil, errors.New("session requires a config store")
	}
	if c.Driver == nil {
		return nil, errors.New("session requires a storage driver")
	}

	s := &Session{
		completer: c.Completer,
		store:     c.Store,
		key:       c.Key,
		driver:    c.Driver,
		writer:    c.Writer,
		now:       c.Now,
		logger:    c.Logger,
		log:       NewLog(),
		idle:      closedChan(),
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.key == nil {
		s.key = func(config.Config) (string, error) { return "", nil }
	}
	if s.writer == nil {
		w, err := writer.New(&writer.Config{Driver: c.Driver, Logger: s.logger})
		if err != nil {
			return nil, err
		}
		s.writer = w
		s.ownWriter = true
	}

	return s, nil
}

// Turns returns a copy of the conversation.
func (s *Session) Turns() []llm.Turn {
	return s.log.Turns()
}

// Busy reports whether a request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Send appends a user turn and asks for a reply. onDelta receives the full
// reply text each time it grows. The returned turn is the settled
// assistant turn; on failure it carries the localized failure message and
// is flagged Failed, and the error is returned alongside.
func (s *Session) Send(ctx context.Context, text string, attachments []llm.Attachment, onDelta func(string)) (llm.Turn, error) {
	if strings.TrimSpace(text) == "" && len(attachments) == 0 {
		return llm.Turn{}, ErrEmptyMessage
	}
	if !s.acquire() {
		return llm.Turn{}, ErrBusy
	}
	defer s.release()

	user := llm.NewTurn(llm.RoleUser, text, s.now())
	user.Attachments = attachments
	s.log.Append(user)
	s.persist()

	return s.complete(ctx, onDelta)
}

// Regenerate drops every turn after the newest user turn and asks again.
func (s *Session) Regenerate(ctx context.Context, onDelta func(string)) (llm.Turn, error) {
	if !s.acquire() {
		return llm.Turn{}, ErrBusy
	}
	defer s.release()

	i := s.log.LastUserIndex()
	if i < 0 {
		return llm.Turn{}, ErrNoUserTurn
	}
	s.log.Truncate(i + 1)
	s.persist()

	return s.complete(ctx, onDelta)
}

// Edit replaces the text of the user turn at index, drops everything after
// it and asks again. Attachments of the edited turn are kept.
func (s *Session) Edit(ctx context.Context, index int, text string, onDelta func(string)) (llm.Turn, error) {
	if !s.acquire() {
		return llm.Turn{}, ErrBusy
	}
	defer s.release()

	turn, ok := s.log.At(index)
	if !ok || turn.Role != llm.RoleUser {
		return llm.Turn{}, ErrNotUserTurn
	}
	if strings.TrimSpace(text) == "" && !turn.HasAttachments() {
		return llm.Turn{}, ErrEmptyMessage
	}

	turn.Text = text
	turn.Timestamp = s.now()
	s.log.Truncate(index)
	s.log.Append(turn)
	s.persist()

	return s.complete(ctx, onDelta)
}

// Restore replaces the conversation with the scratch transcript.
func (s *Session) Restore(ctx context.Context) error {
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()

	content, err := s.driver.ReadScratch(ctx)
	if err != nil {
		return fmt.Errorf("reading scratch transcript: %w", err)
	}

	turns := s.codec().DecodeOn(content, s.now())
	s.log.Replace(turns)
	s.logger.Debug("scratch transcript restored", "turns", len(turns))
	return nil
}

// Archive stores the conversation as a new history snapshot, then clears
// it along with the scratch transcript. It returns the snapshot name, or
// "" when there was nothing to archive.
func (s *Session) Archive(ctx context.Context) (string, error) {
	if !s.acquire() {
		return "", ErrBusy
	}
	defer s.release()

	turns := persistable(s.log.Turns())
	if len(turns) == 0 {
		return "", nil
	}

	name := transcript.SnapshotName(s.now())
	if err := s.driver.PutSnapshot(ctx, name, s.codec().Encode(turns)); err != nil {
		return "", fmt.Errorf("archiving conversation: %w", err)
	}

	s.log.Clear()
	s.persist()
	s.logger.Info("conversation archived", "name", name, "turns", len(turns))
	return name, nil
}

// Load replaces the conversation with the named history snapshot and
// mirrors it to the scratch transcript.
func (s *Session) Load(ctx context.Context, name string) error {
	if !s.acquire() {
		return ErrBusy
	}
	defer s.release()

	content, err := s.driver.GetSnapshot(ctx, name)
	if err != nil {
		return err
	}

	day := s.now()
	if created, err := transcript.ParseSnapshotName(name); err == nil {
		day = created.In(day.Location())
	}

	turns := s.codec().DecodeOn(content, day)
	s.log.Replace(turns)
	s.persist()
	s.logger.Debug("history snapshot loaded", "name", name, "turns", len(turns))
	return nil
}

// Wait blocks until no request is in flight or ctx is done. Cancel the
// request's context first to make it settle promptly.
func (s *Session) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits for an in-flight request to settle, then until queued
// scratch writes have been attempted.
func (s *Session) Flush(ctx context.Context) error {
	if err := s.Wait(ctx); err != nil {
		return err
	}
	return s.writer.Flush(ctx)
}

// Close drains pending writes when the session owns its writer. A request
// still in flight settles into memory only.
func (s *Session) Close() {
	if s.ownWriter {
		s.writer.Close()
	}
}

func (s *Session) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return false
	}
	s.busy = true
	s.idle = make(chan struct{})
	return true
}

func (s *Session) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false
	close(s.idle)
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// complete sends the log and settles a new assistant placeholder. The
// caller holds the busy flag.
func (s *Session) complete(ctx context.Context, onDelta func(string)) (llm.Turn, error) {
	if onDelta == nil {
		onDelta = func(string) {}
	}

	cfg := s.store.Get()
	codec := s.codecFor(cfg)

	history := persistable(s.log.Turns())
	idx := s.log.Append(llm.NewTurn(llm.RoleAssistant, "", s.now()))

	settle := func(err error) (llm.Turn, error) {
		msg := codec.Labels().FailureMessage(err)
		s.log.MarkFailed(idx, msg)
		onDelta(msg)
		s.persist()
		turn, _ := s.log.At(idx)
		return turn, err
	}

	key, err := s.key(cfg)
	if err != nil {
		return settle(fmt.Errorf("resolving api key: %w", err))
	}

	text, err := s.completer.Complete(ctx, RequestConfigFrom(cfg, key), history, func(buf string) {
		s.log.SetText(idx, buf)
		onDelta(buf)
	})
	if err != nil {
		s.logger.Error("completion failed", "error", err)
		return settle(err)
	}

	s.log.SetText(idx, text)
	s.persist()

	turn, _ := s.log.At(idx)
	return turn, nil
}

// persist queues the current conversation as the scratch transcript.
func (s *Session) persist() {
	content := s.codec().Encode(persistable(s.log.Turns()))
	if !s.writer.Enqueue(content) {
		s.logger.Warn("scratch transcript not saved")
	}
}

func (s *Session) codec() *transcript.Codec {
	return s.codecFor(s.store.Get())
}

func (s *Session) codecFor(cfg config.Config) *transcript.Codec {
	return transcript.NewCodec(
		transcript.WithLanguage(cfg.Transcript.Language),
		transcript.WithDatedHeaders(cfg.Transcript.DatedHeaders),
	)
}

// persistable drops failed placeholders, which live only in memory.
func persistable(turns []llm.Turn) []llm.Turn {
	out := make([]llm.Turn, 0, len(turns))
	for _, t := range turns {
		if !t.Failed {
			out = append(out, t)
		}
	}
	return out
}
