// Package workspace wires the pieces every notechat command needs: the
// resolved configuration, the transcript storage, credentials and logging.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/notechat/pkg/completion"
	"github.com/papercomputeco/notechat/pkg/config"
	"github.com/papercomputeco/notechat/pkg/conversation"
	"github.com/papercomputeco/notechat/pkg/credentials"
	"github.com/papercomputeco/notechat/pkg/logger"
	"github.com/papercomputeco/notechat/pkg/storage"
	storageutils "github.com/papercomputeco/notechat/pkg/storage/utils"
	"github.com/papercomputeco/notechat/pkg/transcript"
)

type Options struct {
	// ConfigDir overrides the .notechat/ directory.
	ConfigDir string

	Debug bool

	// Config, when set, is used as-is for the lifetime of the workspace.
	// When nil the workspace follows config.toml and picks up edits made
	// while it runs.
	Config *config.Config

	// Logger overrides the default pretty stderr logger.
	Logger *slog.Logger
}

// Workspace is the opened .notechat/ directory.
type Workspace struct {
	Dir         string
	Logger      *slog.Logger
	Store       config.Store
	Driver      storage.Driver
	Credentials *credentials.Manager

	fileStore *config.FileStore
}

// Open resolves the directory, loads configuration and opens storage.
func Open(o Options) (*Workspace, error) {
	log := o.Logger
	if log == nil {
		log = logger.New(
			logger.WithWriter(os.Stderr),
			logger.WithPretty(true),
			logger.WithDebug(o.Debug),
		)
	}

	cfger, err := config.NewConfiger(o.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	w := &Workspace{
		Dir:    cfger.Dir(),
		Logger: log,
	}

	if o.Config != nil {
		w.Store = config.NewStaticStore(o.Config)
	} else {
		w.fileStore, err = config.NewFileStore(cfger, log)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		w.Store = w.fileStore
	}

	w.Credentials, err = credentials.NewManager(o.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	opts := DriverOpts(w.Dir, w.Store.Get().Storage)
	opts.Logger = log

	w.Driver, err = storageutils.NewDriver(opts)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	return w, nil
}

// ResolveConfig layers flags, NOTECHAT_* environment variables, config.toml
// and defaults for the registered flags in flagKeys.
func ResolveConfig(cmd *cobra.Command, configDir string, flagKeys []string) (*config.Config, error) {
	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, flagKeys)
	return config.ConfigFromViper(v)
}

// AnyChanged reports whether any of the registered flags was set on the
// command line.
func AnyChanged(cmd *cobra.Command, flagKeys []string) bool {
	for _, key := range flagKeys {
		def, ok := config.Flags[key]
		if ok && cmd.Flags().Changed(def.Name) {
			return true
		}
	}
	return false
}

// Key resolves the API key for the endpoint named in cfg.
func (w *Workspace) Key(cfg config.Config) (string, error) {
	return w.Credentials.ResolveKey(credentials.ProviderForBaseURL(cfg.Endpoint.BaseURL))
}

// Codec returns a transcript codec for the current configuration.
func (w *Workspace) Codec() *transcript.Codec {
	cfg := w.Store.Get()
	return transcript.NewCodec(
		transcript.WithLanguage(cfg.Transcript.Language),
		transcript.WithDatedHeaders(cfg.Transcript.DatedHeaders),
	)
}

// NewSession creates a conversation session. A nil completer selects an
// HTTP completion client.
func (w *Workspace) NewSession(completer conversation.Completer) (*conversation.Session, error) {
	if completer == nil {
		completer = completion.New(completion.WithLogger(w.Logger))
	}

	return conversation.New(&conversation.Config{
		Completer: completer,
		Store:     w.Store,
		Key:       w.Key,
		Driver:    w.Driver,
		Logger:    w.Logger,
	})
}

// Watch follows config.toml until ctx is done. It does nothing for a
// workspace opened with a fixed configuration.
func (w *Workspace) Watch(ctx context.Context) {
	if w.fileStore == nil {
		return
	}

	go func() {
		if err := w.fileStore.Watch(ctx); err != nil && ctx.Err() == nil {
			w.Logger.Warn("config watch stopped", "error", err)
		}
	}()
}

// Close releases storage.
func (w *Workspace) Close() error {
	return w.Driver.Close()
}
