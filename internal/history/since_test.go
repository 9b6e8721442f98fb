package history

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseSince(t *testing.T) {
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expr    string
		want    time.Time
		wantErr bool
	}{
		{
			name: "rfc3339",
			expr: "2026-03-01T10:00:00Z",
			want: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "plain date",
			expr: "2026-02-28",
			want: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "empty",
			expr:    "  ",
			wantErr: true,
		},
		{
			name:    "gibberish",
			expr:    "qwzx",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSince(tt.expr, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSince(%q) = %v, want error", tt.expr, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSince(%q) error = %v", tt.expr, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseSince(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestParseSinceNaturalLanguage(t *testing.T) {
	now := time.Date(2026, 3, 12, 15, 0, 0, 0, time.UTC)

	got, err := ParseSince("yesterday", now)
	if err != nil {
		t.Fatalf("ParseSince(yesterday) error = %v", err)
	}
	if !got.Before(now) || got.Before(now.Add(-48*time.Hour)) {
		t.Errorf("ParseSince(yesterday) = %v, want within the previous day of %v", got, now)
	}
}

func TestFilter(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{ID: "c", Message: "newest", Time: base.Add(2 * time.Hour)},
		{ID: "b", Message: "middle", Time: base.Add(time.Hour)},
		{ID: "a", Message: "oldest", Time: base},
	}

	tests := []struct {
		name  string
		since time.Time
		limit int
		want  []string
	}{
		{"no bounds", time.Time{}, 0, []string{"c", "b", "a"}},
		{"limit", time.Time{}, 2, []string{"c", "b"}},
		{"since", base.Add(time.Hour), 0, []string{"c", "b"}},
		{"since and limit", base.Add(30 * time.Minute), 1, []string{"c"}},
		{"since after all", base.Add(3 * time.Hour), 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(entries, tt.since, tt.limit)
			ids := make([]string, len(got))
			for i, e := range got {
				ids[i] = e.ID
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
