package main

import (
	"context"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/adamlabadorf/afj/internal/vcs"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=...".
var (
	Version = "dev"
	Commit  = ""
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: "info",
		Short:   "Print the afj version and the available history engines",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := Version
			if Commit != "" {
				v += " (" + vcs.ShortID(Commit) + ")"
			}
			a.println("afj %s %s/%s %s", v, runtime.GOOS, runtime.GOARCH, runtime.Version())

			for _, t := range vcs.RegisteredTypes() {
				status := "not installed"
				if vcs.IsAvailable(t) {
					status = engineVersion(cmd.Context(), t)
				}
				a.println("  %-4s %s", t, status)
			}
		},
	}
}

func engineVersion(ctx context.Context, t vcs.Type) string {
	v, err := vcs.BinaryVersion(ctx, t)
	if err != nil {
		return "installed"
	}
	return v
}
