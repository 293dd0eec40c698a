package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/papercomputeco/notechat/pkg/logger"
)

// Store hands out the current configuration. Callers read it at the moment
// they need it, so a change applies to the next request without a restart.
type Store interface {
	// Get returns a copy of the current configuration.
	Get() Config

	// Set validates and assigns a single dotted key.
	Set(key, value string) error

	// Subscribe registers fn to run after every change. The returned func
	// removes the subscription.
	Subscribe(fn func(Config)) (cancel func())
}

// StaticStore is an in-memory Store.
type StaticStore struct {
	mu   sync.RWMutex
	cfg  Config
	subs map[int]func(Config)
	next int
}

// NewStaticStore returns a StaticStore seeded with cfg, or with
// NewDefaultConfig() when cfg is nil.
func NewStaticStore(cfg *Config) *StaticStore {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	return &StaticStore{
		cfg:  *cfg,
		subs: make(map[int]func(Config)),
	}
}

func (s *StaticStore) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *StaticStore) Set(key, value string) error {
	s.mu.Lock()
	cfg := s.cfg
	if err := SetValue(&cfg, key, value); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cfg = cfg
	s.mu.Unlock()

	s.notify(cfg)
	return nil
}

// Replace swaps in a whole configuration and notifies subscribers.
func (s *StaticStore) Replace(cfg Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	s.notify(cfg)
}

func (s *StaticStore) Subscribe(fn func(Config)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *StaticStore) notify(cfg Config) {
	s.mu.RLock()
	subs := make([]func(Config), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(cfg)
	}
}

// FileStore is a Store backed by config.toml. Set persists immediately and
// Watch reloads the file when another process edits it.
type FileStore struct {
	*StaticStore

	configer *Configer
	logger   *slog.Logger
	saveMu   sync.Mutex
}

// NewFileStore loads config.toml through configer.
func NewFileStore(configer *Configer, log *slog.Logger) (*FileStore, error) {
	if log == nil {
		log = logger.Nop()
	}

	cfg, err := configer.LoadConfig()
	if err != nil {
		return nil, err
	}

	return &FileStore{
		StaticStore: NewStaticStore(cfg),
		configer:    configer,
		logger:      log,
	}, nil
}

// Set validates the key, saves the file and notifies subscribers.
func (f *FileStore) Set(key, value string) error {
	f.saveMu.Lock()
	defer f.saveMu.Unlock()

	cfg := f.Get()
	if err := SetValue(&cfg, key, value); err != nil {
		return err
	}
	if err := f.configer.SaveConfig(&cfg); err != nil {
		return err
	}

	f.Replace(cfg)
	return nil
}

// Reload re-reads config.toml. A file that fails to parse leaves the
// current configuration in place.
func (f *FileStore) Reload() error {
	cfg, err := f.configer.LoadConfig()
	if err != nil {
		return err
	}
	f.Replace(*cfg)
	return nil
}

// Watch reloads the configuration whenever config.toml is written, until
// ctx is done.
func (f *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	path := f.configer.GetTarget()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching config dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := f.Reload(); err != nil {
				f.logger.Warn("ignoring unreadable config change", "path", path, "error", err)
				continue
			}
			f.logger.Debug("config reloaded", "path", path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("config watcher error: %w", err)
		}
	}
}
