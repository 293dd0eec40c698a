package historycmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/notechat/pkg/cliui"
)

func newShowCmd() *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a history snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd)
			if err != nil {
				return err
			}
			defer ws.Close()

			content, err := ws.Driver.GetSnapshot(cmd.Context(), snapshotName(args[0]))
			if err != nil {
				return err
			}

			if render {
				rendered, err := cliui.RenderMarkdown(content)
				if err != nil {
					ws.Logger.Debug("markdown render failed", "error", err)
				}
				content = rendered
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), content)
			return err
		},
	}

	cmd.Flags().BoolVarP(&render, "render", "r", false, "Render the transcript as Markdown")

	return cmd
}
