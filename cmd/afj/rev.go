package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamlabadorf/afj/internal/ui"
	"github.com/adamlabadorf/afj/internal/vcs"
)

// confirmRevert asks before an interactive revert; tests replace it.
var confirmRevert = ui.Confirm

func newRevCmd(a *app) *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:     "rev <input_file>",
		Aliases: []string{"revert"},
		GroupID: "files",
		Short:   "Revert a file to its previous version",
		Long: `Move the file's history back one version and write that version over the
file. Fails when the file has no history or only one recorded version.

Examples:
  afj rev sample.py
  afj rev -i sample.py   # show the target version and ask first`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.orchestrator(false)
			if err != nil {
				return err
			}

			if interactive {
				prev, err := o.Previous(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				ok, err := confirmRevert(
					fmt.Sprintf("Revert %s to %s?", args[0], vcs.ShortID(prev.ID)),
					firstLine(prev.Message))
				if err != nil {
					return err
				}
				if !ok {
					a.println("%s Revert cancelled", ui.RenderWarn(ui.IconWarn))
					return nil
				}
			}

			res, err := o.Revert(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			a.println("%s Reverted %s to %s",
				ui.RenderPass(ui.IconPass),
				ui.RenderAccent(res.Name),
				ui.RenderID(vcs.ShortID(res.Commit)))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Show the target version and ask for confirmation")
	return cmd
}
