package jj

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adamlabadorf/afj/internal/vcs"
)

// rootCommitID is the id jj reports for the virtual root commit.
const rootCommitID = "0000000000000000000000000000000000000000"

// recordEnd terminates each entry in templated log output. Descriptions are
// free text, so the marker sits on its own line.
const recordEnd = "---afj-end---\n"

// logTemplate renders one entry as a header line followed by the description.
const logTemplate = `commit_id ++ " " ++ commit_id.short(7) ++ " " ++ ` +
	`committer.timestamp().utc().format("%s") ++ "\n" ++ description ++ "\n---afj-end---\n"`

// ===================
// Commit Operations
// ===================

// Commit seals the working-copy change with opts.Message and starts a new
// empty change on top of it.
//
// jj snapshots the working copy automatically, so there is no staging step;
// when Paths is set only those paths go into the commit. jj always permits
// empty commits, so AllowEmpty needs no flag.
func (j *JJ) Commit(ctx context.Context, opts vcs.CommitOptions) (string, error) {
	// Attached form so a message starting with '-' is never read as a flag
	args := []string{"commit", "--message=" + opts.Message}

	if len(opts.Paths) > 0 {
		args = append(args, "--")
		args = append(args, filesets(opts.Paths)...)
	}

	if _, err := j.Exec(ctx, args...); err != nil {
		return "", fmt.Errorf("jj commit failed: %w", err)
	}

	return j.Head(ctx)
}

// Head returns the commit id of the last sealed change (@-).
func (j *JJ) Head(ctx context.Context) (string, error) {
	id, err := j.resolve(ctx, "@-")
	if err != nil {
		return "", err
	}
	if id == rootCommitID {
		return "", vcs.ErrNoCommits
	}
	return id, nil
}

// Parent returns the first parent of ref
func (j *JJ) Parent(ctx context.Context, ref string) (string, error) {
	id, err := j.resolve(ctx, fmt.Sprintf("(%s)-", ref))
	if err != nil {
		return "", fmt.Errorf("%w: parent of %s", vcs.ErrRefNotFound, ref)
	}
	if id == "" || id == rootCommitID {
		return "", fmt.Errorf("%w: parent of %s", vcs.ErrRefNotFound, ref)
	}
	return id, nil
}

// ResetHard starts a new working-copy change on top of ref. Commits that
// followed ref stay in the operation log but drop out of the ancestry that
// Log reports.
func (j *JJ) ResetHard(ctx context.Context, ref string) error {
	if _, err := j.Exec(ctx, "new", ref); err != nil {
		return fmt.Errorf("jj new failed: %w", err)
	}
	return nil
}

// GetCommitHash returns the commit hash for the given reference.
// For jj, this returns the commit ID (not change ID).
func (j *JJ) GetCommitHash(ctx context.Context, ref string) (string, error) {
	id, err := j.resolve(ctx, ref)
	if err != nil || id == "" {
		return "", fmt.Errorf("failed to resolve ref %s: %w", ref, vcs.ErrRefNotFound)
	}
	return id, nil
}

// ExtractFileFromRef extracts a file's content from a specific ref.
func (j *JJ) ExtractFileFromRef(ctx context.Context, ref, path string) ([]byte, error) {
	args := append([]string{"file", "show", "-r", ref, "--"}, filesets([]string{path})...)
	output, err := j.Exec(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to extract file from ref: %w", err)
	}
	return output, nil
}

// ===================
// Log Operations
// ===================

// Log returns the sealed ancestors of the working copy, newest first.
func (j *JJ) Log(ctx context.Context, opts vcs.LogOptions) ([]vcs.CommitInfo, error) {
	if _, err := j.Head(ctx); err != nil {
		if errors.Is(err, vcs.ErrNoCommits) {
			return nil, nil
		}
		return nil, err
	}

	args := []string{"log", "--no-graph", "-r", "::@- & ~root()", "-T", logTemplate}
	if opts.Limit > 0 {
		args = append(args, "-n", strconv.Itoa(opts.Limit))
	}
	if len(opts.Paths) > 0 {
		args = append(args, "--")
		args = append(args, filesets(opts.Paths)...)
	}

	output, err := j.Exec(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("jj log failed: %w", err)
	}

	return parseLog(output)
}

// parseLog parses output rendered with logTemplate.
//
// jj terminates non-empty descriptions with a newline; exactly one is
// removed in addition to the newline the template adds.
func parseLog(output []byte) ([]vcs.CommitInfo, error) {
	records := vcs.SplitRecords(output, recordEnd)
	commits := make([]vcs.CommitInfo, 0, len(records))

	for _, record := range records {
		header, description, ok := strings.Cut(record, "\n")
		if !ok {
			return nil, fmt.Errorf("unexpected jj log record: %q", record)
		}

		fields := strings.Fields(header)
		if len(fields) != 3 {
			return nil, fmt.Errorf("unexpected jj log header: %q", header)
		}

		secs, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected jj log timestamp %q: %w", fields[2], err)
		}

		description = strings.TrimSuffix(description, "\n")
		description = strings.TrimSuffix(description, "\n")

		commits = append(commits, vcs.CommitInfo{
			ID:      fields[0],
			ShortID: fields[1],
			Time:    time.Unix(secs, 0),
			Message: description,
		})
	}

	return commits, nil
}

// ===================
// Helpers
// ===================

// resolve returns the single commit id a revset evaluates to.
func (j *JJ) resolve(ctx context.Context, revset string) (string, error) {
	output, err := j.execWithOutput(ctx, "log", "--no-graph", "-r", revset, "-n", "1", "-T", `commit_id ++ "\n"`)
	if err != nil {
		return "", err
	}
	return output, nil
}

// filesets quotes repository-relative paths as exact root-relative filesets
// so that names with dots or glob characters are taken literally.
func filesets(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = "root-file:" + strconv.Quote(p)
	}
	return out
}
