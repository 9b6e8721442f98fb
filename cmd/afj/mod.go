package main

import (
	"github.com/spf13/cobra"

	"github.com/adamlabadorf/afj/internal/ui"
	"github.com/adamlabadorf/afj/internal/vcs"
)

func newModCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "mod <input_file> <prompt>",
		Aliases: []string{"modify"},
		GroupID: "files",
		Short:   "Modify a file with the AI model and record the new version",
		Long: `Send the file and the prompt to the configured model, record the reply as
the newest version of the file's history, and write it over the file.

With AFJ_MOCK_LLM set, the prompt sent to the model is written back
unchanged, which is handy for trying afj without an API key.

Examples:
  afj mod sample.py "Add a docstring to every function."
  AFJ_MOCK_LLM=1 afj mod notes.md "Fix the typos."`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.orchestrator(true)
			if err != nil {
				return err
			}

			res, err := o.Modify(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			a.println("%s Modified %s %s",
				ui.RenderPass(ui.IconPass),
				ui.RenderAccent(res.Name),
				ui.RenderID(vcs.ShortID(res.Commit)))
			if res.Created {
				a.println("  %s", ui.RenderMuted("started history in "+res.Root))
			}
			return nil
		},
	}
}
