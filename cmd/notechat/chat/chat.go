// Package chatcmder provides the interactive chat command.
package chatcmder

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/notechat/cmd/notechat/workspace"
	"github.com/papercomputeco/notechat/pkg/config"
)

type chatCommander struct {
	baseURL  string
	model    string
	proxyURL string
	language string

	configDir string
	debug     bool
	cfg       *config.Config
}

var chatFlags = []string{
	config.FlagBaseURL,
	config.FlagModel,
	config.FlagProxyURL,
	config.FlagLanguage,
}

const chatLongDesc string = `Start an interactive chat.

The conversation picks up where the last one left off: every settled turn
is mirrored to the scratch transcript in the .notechat/ directory as
Markdown. Replies stream in and are rendered as Markdown as they grow.

Unless a flag overrides it, configuration is read live from config.toml:
changes made with "notechat config set" apply to the next message.

Keys:
  enter        Send the message
  alt+enter    Insert a newline
  ctrl+e       Edit your last message
  ctrl+r       Regenerate the last reply
  ctrl+n       Archive the conversation and start a new one
  pgup/pgdown  Scroll (scrolling up pauses auto-scroll)
  esc, ctrl+c  Quit

Examples:
  notechat chat
  notechat chat --model gpt-4o --language zh`

const chatShortDesc string = "Start an interactive chat"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			if !workspace.AnyChanged(cmd, chatFlags) {
				return nil
			}

			cfg, err := workspace.ResolveConfig(cmd, cmder.configDir, chatFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagBaseURL, &cmder.baseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagProxyURL, &cmder.proxyURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagLanguage, &cmder.language)

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	logFile, err := os.CreateTemp("", "notechat-chat-*.log")
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	defer logFile.Close()

	ws, err := workspace.Open(workspace.Options{
		ConfigDir: c.configDir,
		Debug:     c.debug,
		Config:    c.cfg,
		// The terminal belongs to the chat view; logs go to a file.
		Logger: newFileLogger(logFile, c.debug),
	})
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ws.Watch(ctx)

	session, err := ws.NewSession(nil)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Restore(ctx); err != nil {
		return err
	}

	style := "light"
	if termenv.NewOutput(os.Stderr).HasDarkBackground() {
		style = "dark"
	}

	m := newModel(ctx, session, ws.Store, style)
	defer m.unsubscribe()
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		return fmt.Errorf("running chat view: %w", err)
	}

	// A reply still streaming when the view closed is abandoned; Flush
	// waits for it to settle so the scratch transcript keeps the last
	// user message.
	cancel()
	if err := session.Flush(context.Background()); err != nil {
		return err
	}

	if c.debug {
		fmt.Fprintf(os.Stderr, "debug log: %s\n", logFile.Name())
	} else {
		_ = os.Remove(logFile.Name())
	}
	return nil
}
