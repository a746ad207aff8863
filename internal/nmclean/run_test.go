package nmclean

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/idelchi/nmclean/internal/match"
)

// setupProjects builds a tree of projects whose node_modules hold `size` bytes
// and were last modified `age` ago.
func setupProjects(t *testing.T, projects map[string]struct {
	size int
	age  time.Duration
},
) string {
	t.Helper()

	root := t.TempDir()

	for name, p := range projects {
		nm := filepath.Join(root, name, "node_modules")
		if err := os.MkdirAll(filepath.Join(nm, "dep"), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(filepath.Join(nm, "dep", "index.js"), make([]byte, p.size), 0o644); err != nil {
			t.Fatal(err)
		}

		stamp := time.Now().Add(-p.age)
		if err := os.Chtimes(nm, stamp, stamp); err != nil {
			t.Fatal(err)
		}
	}

	return root
}

func names(t *testing.T, root string, records []match.Record) []string {
	t.Helper()

	out := make([]string, len(records))

	for i, r := range records {
		rel, err := filepath.Rel(root, filepath.Dir(r.Path))
		if err != nil {
			t.Fatal(err)
		}

		out[i] = filepath.ToSlash(rel)
	}

	return out
}

func TestRun(t *testing.T) {
	day := 24 * time.Hour
	root := setupProjects(t, map[string]struct {
		size int
		age  time.Duration
	}{
		"old-small": {size: 100, age: 90 * day},
		"old-big":   {size: 5000, age: 40 * day},
		"fresh":     {size: 3000, age: day},
	})

	tests := []struct {
		name  string
		opt   Options
		want  []string
		total uint64
	}{
		{
			name:  "age oldest first",
			opt:   Options{},
			want:  []string{"old-small", "old-big", "fresh"},
			total: 8100,
		},
		{
			name:  "age newest first",
			opt:   Options{NewestFirst: true},
			want:  []string{"fresh", "old-big", "old-small"},
			total: 8100,
		},
		{
			name:  "by size",
			opt:   Options{SortBySize: true},
			want:  []string{"old-big", "fresh", "old-small"},
			total: 8100,
		},
		{
			name:  "older than 30 days",
			opt:   Options{OlderThan: 30, SortBySize: true},
			want:  []string{"old-big", "old-small"},
			total: 5100,
		},
		{
			name:  "min size",
			opt:   Options{MinSize: 1000, SizeStrategy: "walk"},
			want:  []string{"old-big", "fresh"},
			total: 8000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opt.Path = root
			tt.opt.Concurrency = 3

			rep, err := Run(context.Background(), tt.opt, nil)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			got := names(t, root, rep.Matches)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("matches = %v, want %v", got, tt.want)
			}

			if rep.TotalBytes != tt.total || rep.Unknown != 0 {
				t.Errorf("TotalBytes = %d (unknown %d), want %d", rep.TotalBytes, rep.Unknown, tt.total)
			}

			if rep.Found != 3 || rep.Partial {
				t.Errorf("Found = %d, Partial = %v", rep.Found, rep.Partial)
			}
		})
	}
}

func TestRunInvalidRootFindsNothing(t *testing.T) {
	rep, err := Run(context.Background(), Options{Path: filepath.Join(t.TempDir(), "nope")}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil", err)
	}

	if len(rep.Matches) != 0 || rep.Found != 0 {
		t.Errorf("report = %+v, want no matches", rep)
	}
}

func TestRunCancelledIsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := Run(ctx, Options{Path: t.TempDir()}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !rep.Partial {
		t.Error("cancelled run should be partial")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opt     Options
		wantErr bool
	}{
		{"defaults", Options{}, false},
		{"negative age", Options{OlderThan: -1}, true},
		{"negative timeout", Options{Timeout: -time.Second}, true},
		{"bad strategy", Options{SizeStrategy: "guess"}, true},
		{"bad output", Options{Output: "yaml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opt.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && (tt.opt.Path != "." || tt.opt.Target != "node_modules" || tt.opt.Concurrency < 1) {
				t.Errorf("defaults not applied: %+v", tt.opt)
			}
		})
	}
}

func TestPrune(t *testing.T) {
	root := setupProjects(t, map[string]struct {
		size int
		age  time.Duration
	}{
		"a": {size: 10, age: time.Hour},
		"b": {size: 20, age: time.Hour},
	})

	opt := Options{Path: root}

	rep, err := Run(context.Background(), opt, nil)
	if err != nil {
		t.Fatal(err)
	}

	summary := Prune(context.Background(), opt, rep.Matches, nil)
	if summary.Deleted != 2 || summary.Freed != 30 {
		t.Errorf("summary = %+v, want 2 deleted freeing 30", summary)
	}

	again, err := Run(context.Background(), opt, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(again.Matches) != 0 {
		t.Errorf("matches after prune = %v", again.Matches)
	}
}

func TestDefaultConcurrency(t *testing.T) {
	if DefaultConcurrency() < 1 {
		t.Errorf("DefaultConcurrency() = %d", DefaultConcurrency())
	}
}
