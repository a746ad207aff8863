package prune

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/idelchi/nmclean/internal/match"
)

// makeTargets creates n populated directories and returns their records,
// each sized 100 bytes.
func makeTargets(t *testing.T, n int) []match.Record {
	t.Helper()

	root := t.TempDir()
	records := make([]match.Record, 0, n)

	for i := range n {
		dir := filepath.Join(root, "p"+string(rune('a'+i)), "node_modules")

		if err := os.MkdirAll(filepath.Join(dir, "pkg"), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(filepath.Join(dir, "pkg", "index.js"), make([]byte, 100), 0o644); err != nil {
			t.Fatal(err)
		}

		records = append(records, match.Record{Path: dir}.WithSize(100))
	}

	return records
}

func exists(path string) bool {
	_, err := os.Lstat(path)

	return err == nil
}

func TestDeleteEmpty(t *testing.T) {
	got := Delete(context.Background(), nil, Options{})
	if got.Deleted != 0 || got.Freed != 0 || len(got.Failures) != 0 {
		t.Errorf("Delete(nil) = %+v, want zero summary", got)
	}
}

func TestDeleteWithVanishedPath(t *testing.T) {
	records := makeTargets(t, 4)

	if err := os.RemoveAll(records[1].Path); err != nil {
		t.Fatal(err)
	}

	// Unknown size counts as zero.
	records[3] = match.Record{Path: records[3].Path}

	var (
		mu    sync.Mutex
		calls int
	)

	summary := Delete(context.Background(), records, Options{
		Concurrency: 3,
		Progress: func(done, total int, _ string) {
			mu.Lock()
			defer mu.Unlock()

			calls++

			if total != 4 || done < 1 || done > 4 {
				t.Errorf("Progress(%d, %d)", done, total)
			}
		},
	})

	if summary.Deleted != 3 || summary.Missing != 1 || len(summary.Failures) != 0 {
		t.Errorf("summary = %+v, want 3 deleted, 1 missing, no failures", summary)
	}

	if summary.Freed != 200 {
		t.Errorf("Freed = %d, want 200", summary.Freed)
	}

	if calls != 4 {
		t.Errorf("progress called %d times, want 4", calls)
	}

	for _, r := range records {
		if exists(r.Path) {
			t.Errorf("%s still exists", r.Path)
		}
	}
}

func TestDeleteContinuesAfterFailure(t *testing.T) {
	records := makeTargets(t, 3)
	failing := records[0].Path
	boom := errors.New("device busy")

	removeAll = func(path string) error {
		if path == failing {
			return boom
		}

		return os.RemoveAll(path)
	}
	t.Cleanup(func() { removeAll = os.RemoveAll })

	summary := Delete(context.Background(), records, Options{Concurrency: 1})

	if summary.Deleted != 2 || summary.Freed != 200 {
		t.Errorf("summary = %+v, want 2 deleted freeing 200", summary)
	}

	if len(summary.Failures) != 1 || summary.Failures[0].Path != failing || !errors.Is(summary.Failures[0].Err, boom) {
		t.Fatalf("Failures = %+v, want one for %s", summary.Failures, failing)
	}

	if summary.Failures[0].Error() != failing+": device busy" {
		t.Errorf("Failure.Error() = %q", summary.Failures[0].Error())
	}

	if !exists(failing) {
		t.Error("failing path should remain")
	}
}

func TestDeleteDryRun(t *testing.T) {
	records := makeTargets(t, 2)

	summary := Delete(context.Background(), records, Options{DryRun: true, Concurrency: 2})

	if summary.Deleted != 2 || summary.Freed != 200 {
		t.Errorf("summary = %+v, want 2 would-be deletions freeing 200", summary)
	}

	for _, r := range records {
		if !exists(r.Path) {
			t.Errorf("dry run removed %s", r.Path)
		}
	}
}

func TestDeleteCancelled(t *testing.T) {
	records := makeTargets(t, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := Delete(ctx, records, Options{})

	if summary.Deleted != 0 || len(summary.Failures) != 2 {
		t.Errorf("summary = %+v, want every path failed with the context error", summary)
	}

	for _, f := range summary.Failures {
		if !errors.Is(f.Err, context.Canceled) {
			t.Errorf("failure %v, want context.Canceled", f.Err)
		}
	}
}
