package main

import (
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/adamlabadorf/afj/internal/ui"
	"github.com/adamlabadorf/afj/internal/vcs"
)

func newLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls [dir]",
		Aliases: []string{"list"},
		GroupID: "files",
		Short:   "List the files tracked under the nearest .afj directory",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				dir = args[0]
			}

			o, err := a.orchestrator(false)
			if err != nil {
				return err
			}

			root, entries, err := o.List(cmd.Context(), dir)
			if err != nil {
				return err
			}

			a.println("%s", ui.RenderMuted(root))
			if len(entries) == 0 {
				a.println("No tracked files")
				return nil
			}

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				Headers("NAME", "ENGINE", "VERSIONS", "HEAD", "SOURCE")
			for _, e := range entries {
				versions, engine, source, head := "-", "-", "-", "-"
				if e.SourcePath != "" {
					versions = strconv.Itoa(e.Versions)
					engine = e.Engine
					source = e.SourcePath
				}
				if e.LastCommit != "" {
					head = vcs.ShortID(e.LastCommit)
				}
				t.Row(e.Name, engine, versions, head, source)
			}
			a.println("%s", t.Render())
			return nil
		},
	}
}
