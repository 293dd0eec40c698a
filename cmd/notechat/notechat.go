// Package notechatcmder
package notechatcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/notechat/cmd/notechat/ask"
	authcmder "github.com/papercomputeco/notechat/cmd/notechat/auth"
	chatcmder "github.com/papercomputeco/notechat/cmd/notechat/chat"
	configcmder "github.com/papercomputeco/notechat/cmd/notechat/config"
	historycmder "github.com/papercomputeco/notechat/cmd/notechat/history"
	initcmder "github.com/papercomputeco/notechat/cmd/notechat/init"
	relaycmder "github.com/papercomputeco/notechat/cmd/notechat/relay"
	versioncmder "github.com/papercomputeco/notechat/cmd/version"
)

const notechatLongDesc string = `notechat is a terminal chat client for OpenAI-compatible endpoints that
keeps every conversation as a plain Markdown transcript.

Get started:
  notechat init                 Create a .notechat/ directory
  notechat auth openai          Store an API key
  notechat chat                 Start chatting

One-off questions:
  notechat ask "what is a monad?"

Run the relay for browser clients:
  notechat relay`

const notechatShortDesc string = "notechat - Markdown-first chat client"

func NewNotechatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "notechat",
		Short:         notechatShortDesc,
		Long:          notechatLongDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .notechat/ config directory")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(relaycmder.NewRelayCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
