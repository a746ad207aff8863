// Package prune removes target directories in parallel and accounts for freed space.
package prune

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/idelchi/nmclean/internal/debug"
	"github.com/idelchi/nmclean/internal/match"
)

// removeAll is replaced in tests to inject failures.
//
//nolint:gochecknoglobals // Test seam
var removeAll = os.RemoveAll

// Options configures Delete.
type Options struct {
	// Concurrency bounds the number of directories removed at once.
	Concurrency int
	// DryRun reports what would be removed without touching the filesystem.
	DryRun bool
	// Log receives debug output.
	Log debug.Logger
	// Progress, if set, is called after each path is handled. Calls are serialized.
	Progress func(done, total int, path string)
}

// Failure describes a path that could not be removed.
type Failure struct {
	// Path is the directory that failed.
	Path string `json:"path"`
	// Err is the cause.
	Err error `json:"-"`
}

// Error returns the failure cause as text.
func (f Failure) Error() string {
	return f.Path + ": " + f.Err.Error()
}

// Summary is the outcome of a deletion batch.
type Summary struct {
	// Deleted is the number of directories removed.
	Deleted int `json:"deleted"`
	// Missing is the number of directories already gone before removal.
	Missing int `json:"missing"`
	// Freed is the sum of the known sizes of removed directories. Unknown sizes count as zero.
	Freed uint64 `json:"freed"`
	// Failures lists every path that could not be removed.
	Failures []Failure `json:"failures"`
}

// Delete removes every record's directory tree. A failure on one path never
// stops the others from being attempted.
func Delete(ctx context.Context, records []match.Record, opt Options) Summary {
	var (
		mu      sync.Mutex
		g       errgroup.Group
		summary Summary
		done    int
	)

	if len(records) == 0 {
		return summary
	}

	workers := opt.Concurrency
	if workers < 1 {
		workers = 1
	}

	g.SetLimit(workers)

	for _, record := range records {
		g.Go(func() error {
			outcome, err := remove(ctx, record.Path, opt.DryRun)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err != nil:
				opt.Log.Printf("failed to delete %s: %v\n", record.Path, err)
				summary.Failures = append(summary.Failures, Failure{Path: record.Path, Err: err})
			case outcome == missing:
				opt.Log.Printf("%s is already gone\n", record.Path)
				summary.Missing++
			default:
				opt.Log.Printf("deleted %s\n", record.Path)
				summary.Deleted++

				n, _ := record.Size()
				summary.Freed += n
			}

			done++
			if opt.Progress != nil {
				opt.Progress(done, len(records), record.Path)
			}

			return nil
		})
	}

	_ = g.Wait()

	return summary
}

type outcome int

const (
	removed outcome = iota
	missing
)

func remove(ctx context.Context, path string, dryRun bool) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return removed, err
	}

	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return missing, nil
		}

		return removed, err
	}

	if dryRun {
		return removed, nil
	}

	return removed, removeAll(path)
}
