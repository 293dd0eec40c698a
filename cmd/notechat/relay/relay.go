// Package relaycmder provides the relay server command.
package relaycmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/notechat/cmd/notechat/workspace"
	"github.com/papercomputeco/notechat/pkg/config"
	"github.com/papercomputeco/notechat/pkg/logger"
	"github.com/papercomputeco/notechat/relay"
)

type relayCommander struct {
	listen     string
	driver     string
	storageDir string
	sqlitePath string
	noMetrics  bool
	noMCP      bool
	logFile    string

	configDir string
	debug     bool
	cfg       *config.Config
}

var relayFlags = []string{
	config.FlagRelayListen,
	config.FlagDriver,
	config.FlagStorageDir,
	config.FlagSQLite,
}

const relayLongDesc string = `Run the relay server.

Chat clients configured with endpoint.proxy_url send every completion
request to the relay wrapped in an envelope naming the real endpoint and
its API key. The relay performs the call and streams the answer back
unchanged.

The relay also serves:
  GET  /healthz   Liveness probe
  GET  /metrics   Prometheus metrics (disable with --no-metrics)
  POST /mcp       MCP tools over the history snapshots (disable with --no-mcp)

Examples:
  notechat relay
  notechat relay --listen :9000 --driver sqlite`

const relayShortDesc string = "Run the notechat relay server"

func NewRelayCmd() *cobra.Command {
	cmder := &relayCommander{}

	cmd := &cobra.Command{
		Use:   "relay",
		Short: relayShortDesc,
		Long:  relayLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			cfg, err := workspace.ResolveConfig(cmd, cmder.configDir, relayFlags)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cmd.Flags().Changed("no-metrics") {
				cfg.Relay.Metrics = !cmder.noMetrics
			}
			if cmd.Flags().Changed("no-mcp") {
				cfg.Relay.MCP = !cmder.noMCP
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

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagRelayListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagDriver, &cmder.driver)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageDir, &cmder.storageDir)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	cmd.Flags().BoolVar(&cmder.noMetrics, "no-metrics", false, "Do not serve /metrics")
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Do not serve the MCP history tools")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *relayCommander) run() error {
	log, closeLog, err := c.newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	ws, err := workspace.Open(workspace.Options{
		ConfigDir: c.configDir,
		Debug:     c.debug,
		Config:    c.cfg,
		Logger:    log,
	})
	if err != nil {
		return err
	}
	defer ws.Close()

	r, err := relay.New(relay.Config{
		ListenAddr: c.cfg.Relay.Listen,
		Metrics:    c.cfg.Relay.Metrics,
		MCP:        c.cfg.Relay.MCP,
		Driver:     ws.Driver,
		Codec:      ws.Codec(),
	}, ws.Logger)
	if err != nil {
		return fmt.Errorf("creating relay: %w", err)
	}
	defer r.Close()

	errChan := make(chan error, 1)
	go func() {
		if err := r.Run(); err != nil {
			errChan <- fmt.Errorf("relay error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		ws.Logger.Info("received signal, shutting down", "signal", sig.String())
		return nil
	}
}

// newLogger writes pretty output to stderr and, with --log-file, JSON
// records to the file as well.
func (c *relayCommander) newLogger() (*slog.Logger, func(), error) {
	console := logger.New(
		logger.WithWriter(os.Stderr),
		logger.WithPretty(true),
		logger.WithDebug(c.debug),
	)
	if c.logFile == "" {
		return console, func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	file := logger.New(
		logger.WithWriter(f),
		logger.WithJSON(true),
		logger.WithDebug(c.debug),
	)
	return logger.Multi(console, file), func() { _ = f.Close() }, nil
}
