package historycmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/notechat/pkg/cliui"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find history snapshots containing text (case-insensitive)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			query := strings.Join(args, " ")
			infos, err := ws.Driver.Search(cmd.Context(), query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(infos) == 0 {
				fmt.Fprintf(out, "\n  %s No snapshots match %q.\n\n", cliui.DimStyle.Render("●"), query)
				return nil
			}

			fmt.Fprintf(out, "\n  %s %s\n\n",
				cliui.HeaderStyle.Render("Matches"),
				cliui.DimStyle.Render(fmt.Sprintf("(%d)", len(infos))),
			)
			printSnapshots(out, infos)
			fmt.Fprintln(out)
			return nil
		},
	}

	return cmd
}
