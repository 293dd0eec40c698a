package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/notechat/pkg/cliui"
	"github.com/papercomputeco/notechat/pkg/config"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file
stored in the .notechat/ directory. Values are validated before the
file is written.

Valid keys:
  endpoint.base_url, endpoint.model, endpoint.temperature,
  endpoint.max_tokens, endpoint.stream, endpoint.proxy_url,
  endpoint.system_prompt, endpoint.max_retry_attempts,
  endpoint.retry_delay, endpoint.timeout,
  transcript.language, transcript.dated_headers,
  storage.driver, storage.dir, storage.sqlite_path,
  relay.listen, relay.metrics, relay.mcp

Examples:
  notechat config set endpoint.base_url http://localhost:11434
  notechat config set endpoint.temperature 0.2
  notechat config set endpoint.retry_delay 2s
  notechat config set endpoint.proxy_url ""`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runSet(args[0], args[1], configDir)
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runSet(key, value, configDir string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	target := cfger.GetTarget()
	if target != "" {
		fmt.Printf("\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}

	previous, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	if previous != "" && previous != value {
		fmt.Printf("  %s Set %s = %s %s\n\n",
			cliui.SuccessMark,
			cliui.KeyStyle.Render(key),
			cliui.ValueStyle.Render(value),
			cliui.DimStyle.Render("(was "+previous+")"),
		)
		return nil
	}

	fmt.Printf("  %s Set %s = %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(key),
		cliui.ValueStyle.Render(value),
	)
	return nil
}
