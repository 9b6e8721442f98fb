package git

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adamlabadorf/afj/internal/vcs"
)

// Fields and records are NUL-separated (git log -z). Messages arrive through
// argv, so they can never contain a NUL byte.
const (
	logFormat       = "--format=%H%x00%h%x00%ct%x00%B"
	fieldsPerRecord = 4
)

// Log returns commits reachable from HEAD, newest first.
// An empty repository yields an empty slice.
func (g *Git) Log(ctx context.Context, opts vcs.LogOptions) ([]vcs.CommitInfo, error) {
	if _, err := g.Head(ctx); err != nil {
		if errors.Is(err, vcs.ErrNoCommits) {
			return nil, nil
		}
		return nil, err
	}

	args := []string{"log", "-z", logFormat}
	if opts.Limit > 0 {
		args = append(args, "-n", strconv.Itoa(opts.Limit))
	}
	args = append(args, "--")
	args = append(args, opts.Paths...)

	output, err := g.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("git log failed: %w", err)
	}

	return parseLog(output)
}

// parseLog parses output produced with logFormat and -z.
//
// Each record looks like:
//
//	<full hash>\x00<short hash>\x00<unix time>\x00<raw message>\x00
//
// git terminates stored messages with a newline; exactly one is removed.
func parseLog(output []byte) ([]vcs.CommitInfo, error) {
	tokens := strings.Split(string(output), "\x00")
	if last := len(tokens) - 1; len(tokens)%fieldsPerRecord == 1 && strings.TrimSpace(tokens[last]) == "" {
		tokens = tokens[:last]
	}
	if len(tokens)%fieldsPerRecord != 0 {
		return nil, fmt.Errorf("unexpected git log output: %d fields", len(tokens))
	}

	commits := make([]vcs.CommitInfo, 0, len(tokens)/fieldsPerRecord)
	for i := 0; i < len(tokens); i += fieldsPerRecord {
		id := strings.TrimSpace(tokens[i])
		if id == "" {
			return nil, fmt.Errorf("unexpected git log record at field %d", i)
		}

		secs, err := strconv.ParseInt(strings.TrimSpace(tokens[i+2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected git log timestamp %q: %w", tokens[i+2], err)
		}

		commits = append(commits, vcs.CommitInfo{
			ID:      id,
			ShortID: strings.TrimSpace(tokens[i+1]),
			Time:    time.Unix(secs, 0),
			Message: strings.TrimSuffix(tokens[i+3], "\n"),
		})
	}

	return commits, nil
}
