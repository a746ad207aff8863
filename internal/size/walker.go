package size

import (
	"context"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/nmclean/internal/debug"
)

// Walker resolves sizes by walking each directory in-process.
type Walker struct {
	// Concurrency bounds the number of directories measured at once.
	Concurrency int
	// Log receives debug output.
	Log debug.Logger
}

// Resolve measures every path, up to Concurrency at a time.
func (w Walker) Resolve(ctx context.Context, paths []string) map[string]uint64 {
	var (
		mu    sync.Mutex
		g     errgroup.Group
		sizes = make(map[string]uint64, len(paths))
	)

	g.SetLimit(limit(w.Concurrency))

	for _, path := range paths {
		g.Go(func() error {
			n, err := DirSize(ctx, path)
			if err != nil {
				w.Log.Printf("size of %s unknown: %v\n", path, err)

				return nil
			}

			mu.Lock()
			sizes[path] = n
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return sizes
}

// DirSize returns the cumulative size of all regular files below root.
// Entries that cannot be read are skipped; an unreachable root or a
// cancelled context is an error.
func DirSize(ctx context.Context, root string) (uint64, error) {
	if _, err := os.Lstat(root); err != nil {
		return 0, err
	}

	var total atomic.Uint64

	conf := &fastwalk.Config{
		Follow: false, // Don't follow symlinks
	}

	//nolint:varnamelen // d is standard for DirEntry
	err := fastwalk.Walk(conf, root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Silently skip errors
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // Intentionally skip errors during walk
		}

		total.Add(uint64(info.Size())) //nolint:gosec // File sizes are never negative

		return nil
	})
	if err != nil {
		return 0, err
	}

	return total.Load(), nil
}
