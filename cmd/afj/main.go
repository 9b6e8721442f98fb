// Command afj edits a single file with an AI model and keeps a private,
// per-file version history next to it so changes can be inspected and
// reverted.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/adamlabadorf/afj/internal/history"
	"github.com/adamlabadorf/afj/internal/index"
	"github.com/adamlabadorf/afj/internal/lock"
	"github.com/adamlabadorf/afj/internal/orchestrator"
	"github.com/adamlabadorf/afj/internal/ui"

	// Engines and providers register themselves.
	_ "github.com/adamlabadorf/afj/internal/backend/anthropic"
	_ "github.com/adamlabadorf/afj/internal/backend/gemini"
	_ "github.com/adamlabadorf/afj/internal/vcs/git"
	_ "github.com/adamlabadorf/afj/internal/vcs/jj"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// execute runs one command line and reports any error on stderr.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root, a := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err != nil {
		a.logger.Debug("command failed", zap.Strings("args", args), zap.Error(err))
		fmt.Fprintf(stderr, "%s %v\n", ui.RenderFail("Error:"), err)
		if hint := hintFor(err); hint != "" {
			fmt.Fprintf(stderr, "%s\n", ui.RenderMuted(hint))
		}
	}
	a.cleanup()
	return err
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, history.ErrRepositoryMissing):
		return "Run `afj mod <file> <prompt>` first to start a history for this file."
	case errors.Is(err, history.ErrUnknownVersion):
		return "Run `afj his <file>` to list the recorded version ids."
	case errors.Is(err, history.ErrNoPriorVersion):
		return "Only one version is recorded; there is nothing to revert to."
	case errors.Is(err, index.ErrNameCollision):
		return "Set allow_name_collisions: true (or AFJ_ALLOW_NAME_COLLISIONS=1) to share the history anyway."
	case errors.Is(err, lock.ErrLocked):
		return "Wait for the other afj command to finish and try again."
	case errors.Is(err, orchestrator.ErrInputNotFound):
		return "Check the file path; afj only modifies existing files."
	}
	return ""
}
