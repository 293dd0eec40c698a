package historycmder

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/notechat/pkg/cliui"
)

func newListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, cmd.OutOrStdout(), limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many snapshots (0 for all)")

	return cmd
}

func runList(cmd *cobra.Command, out io.Writer, limit int) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer ws.Close()

	infos, err := ws.Driver.ListSnapshots(cmd.Context())
	if err != nil {
		return err
	}

	if len(infos) == 0 {
		fmt.Fprintf(out, "\n  %s No history snapshots.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	if limit > 0 && len(infos) > limit {
		infos = infos[:limit]
	}

	fmt.Fprintf(out, "\n  %s\n\n", cliui.HeaderStyle.Render("History"))
	printSnapshots(out, infos)
	fmt.Fprintln(out)
	return nil
}
