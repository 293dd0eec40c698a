package historycmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/notechat/pkg/cliui"
)

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Replace the live conversation with a history snapshot",
		Long: `Replace the live conversation with a history snapshot.

The current conversation is discarded unless it was archived first. The
snapshot itself is left in place.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			session, err := ws.NewSession(nil)
			if err != nil {
				return err
			}
			defer session.Close()

			name := snapshotName(args[0])
			if err := session.Load(cmd.Context(), name); err != nil {
				return err
			}
			if err := session.Flush(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n  %s Loaded %s %s\n\n",
				cliui.SuccessMark,
				cliui.NameStyle.Render(name),
				cliui.DimStyle.Render(fmt.Sprintf("(%d turns)", len(session.Turns()))),
			)
			return nil
		},
	}

	return cmd
}
