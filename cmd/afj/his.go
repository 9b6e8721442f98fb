package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adamlabadorf/afj/internal/history"
	"github.com/adamlabadorf/afj/internal/ui"
)

func newHisCmd(a *app) *cobra.Command {
	var (
		format string
		since  string
		limit  int
		show   string
	)

	cmd := &cobra.Command{
		Use:     "his <input_file>",
		Aliases: []string{"history"},
		GroupID: "files",
		Short:   "Show the recorded versions of a file",
		Long: `List the versions recorded for a file, newest first, one
"<short id> <prompt>" line each. The file itself is not read or changed.

With --show, print the content recorded at one version instead; the id
may be abbreviated to any unique prefix.

Examples:
  afj his sample.py
  afj his sample.py --since "2 days ago" -n 5
  afj his sample.py --format json
  afj his sample.py --show 1a2b3c4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "text", "json", "yaml":
			default:
				return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
			}

			o, err := a.orchestrator(false)
			if err != nil {
				return err
			}

			if show != "" {
				if since != "" || limit != 0 {
					return fmt.Errorf("--show cannot be combined with --since or --limit")
				}
				v, err := o.Show(cmd.Context(), args[0], show)
				if err != nil {
					return err
				}
				return a.printVersion(v, format)
			}

			var cutoff time.Time
			if since != "" {
				cutoff, err = history.ParseSince(since, o.Now())
				if err != nil {
					return err
				}
			}

			entries, err := o.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			entries = history.Filter(entries, cutoff, limit)

			switch format {
			case "json":
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				if entries == nil {
					entries = []history.Entry{}
				}
				return enc.Encode(entries)
			case "yaml":
				enc := yaml.NewEncoder(a.out)
				defer enc.Close()
				return enc.Encode(entries)
			}

			for _, e := range entries {
				fmt.Fprintf(a.out, "%s %s\n", ui.RenderID(e.ShortID), firstLine(e.Message))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or yaml")
	cmd.Flags().StringVar(&since, "since", "", `Only versions after this time ("yesterday", "3 hours ago", RFC3339)`)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many versions")
	cmd.Flags().StringVar(&show, "show", "", "Print the content recorded at this version id")
	return cmd
}

// printVersion writes a single version. Text output is the recorded
// content, byte for byte, so it can be redirected into a file.
func (a *app) printVersion(v *history.Version, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(a.out)
		defer enc.Close()
		return enc.Encode(v)
	}
	_, err := io.WriteString(a.out, v.Content)
	return err
}

// firstLine returns the first line of a commit message.
func firstLine(msg string) string {
	line, _, _ := strings.Cut(msg, "\n")
	return line
}
