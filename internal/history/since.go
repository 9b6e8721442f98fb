package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ParseSince turns a user-supplied point in time into an absolute time.
// RFC 3339 timestamps and plain dates (2006-01-02) are accepted as-is;
// anything else goes through natural-language parsing relative to now
// ("yesterday", "last friday", "3 days ago").
func ParseSince(expr string, now time.Time) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}

	if t, err := time.Parse(time.RFC3339, expr); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", expr, now.Location()); err == nil {
		return t, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	r, err := w.Parse(expr, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse time %q: %w", expr, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("cannot parse time %q", expr)
	}
	return r.Time, nil
}

// Filter keeps entries recorded at or after since (zero means no bound)
// and caps the result at limit entries (zero means no cap). Order is kept.
func Filter(entries []Entry, since time.Time, limit int) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !since.IsZero() && e.Time.Before(since) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
