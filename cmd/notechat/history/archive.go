package historycmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/notechat/pkg/cliui"
)

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Archive the live conversation and start a new one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			if err := session.Restore(cmd.Context()); err != nil {
				return err
			}

			name, err := session.Archive(cmd.Context())
			if err != nil {
				return err
			}
			if err := session.Flush(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if name == "" {
				fmt.Fprintf(out, "\n  %s Nothing to archive.\n\n", cliui.DimStyle.Render("●"))
				return nil
			}

			fmt.Fprintf(out, "\n  %s Archived as %s\n\n", cliui.SuccessMark, cliui.NameStyle.Render(name))
			return nil
		},
	}

	return cmd
}
