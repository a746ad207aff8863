package size

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/idelchi/nmclean/internal/debug"
)

// DefaultBatchSize is the number of paths handed to a single du invocation.
const DefaultBatchSize = 256

// Du resolves sizes with the external du tool, many paths per invocation.
type Du struct {
	// Binary is the du executable. Defaults to "du".
	Binary string
	// Concurrency bounds the number of du processes running at once.
	Concurrency int
	// BatchSize is the number of paths per invocation. Defaults to DefaultBatchSize.
	BatchSize int
	// Log receives debug output.
	Log debug.Logger
}

// Resolve runs du over all paths in batches.
func (d Du) Resolve(ctx context.Context, paths []string) map[string]uint64 {
	bin := d.Binary
	if bin == "" {
		bin = "du"
	}

	batch := d.BatchSize
	if batch < 1 {
		batch = DefaultBatchSize
	}

	var (
		mu    sync.Mutex
		g     errgroup.Group
		sizes = make(map[string]uint64, len(paths))
	)

	g.SetLimit(limit(d.Concurrency))

	for start := 0; start < len(paths); start += batch {
		chunk := paths[start:min(start+batch, len(paths))]

		g.Go(func() error {
			got := d.run(ctx, bin, chunk)

			mu.Lock()
			for path, n := range got {
				sizes[path] = n
			}
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait()

	return sizes
}

// run invokes du once. A run that fails without producing any usable line
// leaves every path of the batch unknown.
func (d Du) run(ctx context.Context, bin string, paths []string) map[string]uint64 {
	want := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		want[p] = struct{}{}
	}

	args := append([]string{"-sk", "--"}, paths...)

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, bin, args...) //nolint:gosec // Binary is operator-controlled
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	sizes := ParseDu(bytes.NewReader(out), want)

	if err != nil {
		if len(sizes) == 0 {
			d.Log.Printf("du failed for %d paths: %v\n", len(paths), err)

			return nil
		}

		d.Log.Printf("du reported errors: %s\n", strings.TrimSpace(stderr.String()))
	}

	return sizes
}

// ParseDu parses `<kilobytes>\t<path>` lines into byte counts. Lines are split
// at the first tab. Malformed or non-UTF-8 lines are dropped, as are paths not
// in want when want is non-nil.
func ParseDu(r io.Reader, want map[string]struct{}) map[string]uint64 {
	sizes := make(map[string]uint64)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		kb, path, ok := strings.Cut(line, "\t")
		if !ok || path == "" || !utf8.ValidString(path) {
			continue
		}

		n, err := strconv.ParseUint(strings.TrimSpace(kb), 10, 64)
		if err != nil {
			continue
		}

		if want != nil {
			if _, ok := want[path]; !ok {
				continue
			}
		}

		sizes[path] = n * 1024
	}

	return sizes
}
