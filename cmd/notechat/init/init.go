// Package initcmder provides the init command for initializing a local
// .notechat directory in the current working directory.
package initcmder

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/notechat/pkg/cliui"
	"github.com/papercomputeco/notechat/pkg/config"
)

const (
	dirName = ".notechat"

	// maxRemoteConfig caps a fetched config.toml.
	maxRemoteConfig = 64 * 1024
)

const initLongDesc string = `Initialize a new .notechat/ directory in the current working directory.

Creates a local .notechat/ directory that takes precedence over the default
~/.notechat/ directory for configuration, credentials, the scratch
transcript and history snapshots.

A config.toml is written on first init. --preset selects a provider preset
(openai, ollama, openrouter) or an http(s) URL to fetch a config.toml from,
and always overwrites an existing config.toml.

Examples:
  notechat init
  notechat init --preset ollama
  notechat init --preset https://example.com/notechat.toml`

const initShortDesc string = "Initialize a local .notechat/ directory"

type initCommander struct {
	preset string
	out    io.Writer
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.out = cmd.OutOrStdout()
			return cmder.run()
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "",
		fmt.Sprintf("Provider preset (%s) or URL of a config.toml", strings.Join(config.ValidPresetNames(), ", ")))

	return cmd
}

func (c *initCommander) run() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, statErr := os.Stat(dir)
	exists := statErr == nil && info.IsDir()

	if exists && c.preset == "" {
		fmt.Fprintf(c.out, "Already initialized: %s\n", dir)
		return nil
	}

	cfg, err := c.resolvePreset()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .notechat directory: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "  %s Initialized %s\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
	fmt.Fprintf(c.out, "  %s %s %s\n",
		cliui.KeyStyle.Render("Endpoint:"),
		cliui.ValueStyle.Render(cfg.Endpoint.BaseURL),
		cliui.NameStyle.Render(cfg.Endpoint.Model),
	)
	return nil
}

func (c *initCommander) resolvePreset() (*config.Config, error) {
	switch {
	case c.preset == "":
		return config.NewDefaultConfig(), nil
	case strings.HasPrefix(c.preset, "http://"), strings.HasPrefix(c.preset, "https://"):
		return fetchRemoteConfig(c.preset)
	default:
		return config.PresetConfig(c.preset)
	}
}

func fetchRemoteConfig(url string) (*config.Config, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteConfig))
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
