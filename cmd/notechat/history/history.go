// Package historycmder provides the history command for browsing and
// restoring archived conversations.
package historycmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/notechat/cmd/notechat/workspace"
	"github.com/papercomputeco/notechat/pkg/cliui"
	"github.com/papercomputeco/notechat/pkg/storage"
	"github.com/papercomputeco/notechat/pkg/transcript"
)

const historyLongDesc string = `Browse and restore archived conversations.

Every time a chat is archived ("notechat history archive", or ctrl+n in
"notechat chat") the conversation is written as an immutable Markdown
snapshot named after the moment it was archived.

Use subcommands to work with snapshots:
  notechat history list              List snapshots, newest first
  notechat history show <name>       Print a snapshot
  notechat history search <query>    Find snapshots containing text
  notechat history load <name>       Replace the live conversation with a snapshot
  notechat history archive           Archive the live conversation and start fresh

Snapshot names may be given with or without the .md extension.`

const historyShortDesc string = "Browse and restore archived conversations"

func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newLoadCmd())
	cmd.AddCommand(newArchiveCmd())

	return cmd
}

// openWorkspace opens the workspace named by the command's flags.
func openWorkspace(cmd *cobra.Command) (*workspace.Workspace, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	return workspace.Open(workspace.Options{
		ConfigDir: configDir,
		Debug:     debug,
	})
}

// snapshotName accepts names with or without the transcript extension.
func snapshotName(arg string) string {
	name := strings.TrimSpace(arg)
	if !strings.HasSuffix(name, transcript.Extension) {
		name += transcript.Extension
	}
	return name
}

func printSnapshots(out io.Writer, infos []storage.SnapshotInfo) {
	for _, info := range infos {
		fmt.Fprintf(out, "  %s  %s  %s\n",
			cliui.NameStyle.Render(strings.TrimSuffix(info.Name, transcript.Extension)),
			cliui.DimStyle.Render(fmt.Sprintf("%6dB", info.Size)),
			cliui.ValueStyle.Render(info.Preview),
		)
	}
}
