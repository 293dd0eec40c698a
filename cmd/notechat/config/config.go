// Package configcmder provides the config command for managing persistent
// notechat configuration stored in the .notechat/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent notechat configuration.

Configuration is stored as config.toml in the .notechat/ directory and provides
default values for command flags. CLI flags and NOTECHAT_* environment
variables take precedence over config file values.

A running "notechat chat" picks up changes to config.toml without a restart.

Keys use dotted notation matching the TOML section structure:
  endpoint.base_url, endpoint.model, endpoint.temperature,
  endpoint.max_tokens, endpoint.stream, endpoint.proxy_url,
  endpoint.system_prompt, endpoint.max_retry_attempts,
  endpoint.retry_delay, endpoint.timeout,
  transcript.language, transcript.dated_headers,
  storage.driver, storage.dir, storage.sqlite_path,
  relay.listen, relay.metrics, relay.mcp

Use subcommands to get, set, or list configuration values:
  notechat config set <key> <value>    Set a configuration value
  notechat config get <key>            Get a configuration value
  notechat config list                 List all configuration values

Examples:
  notechat config set endpoint.model gpt-4o
  notechat config set transcript.language zh
  notechat config get endpoint.base_url
  notechat config list`

const configShortDesc string = "Manage persistent notechat configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
