package scan

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/idelchi/nmclean/internal/debug"
	"github.com/idelchi/nmclean/internal/match"
)

// DefaultTarget is the directory name looked for when no predicate is given.
const DefaultTarget = "node_modules"

// Name returns a predicate matching directories named exactly target.
func Name(target string) func(string) bool {
	return func(name string) bool {
		return name == target
	}
}

// Options configures a Scanner.
type Options struct {
	// Predicate reports whether a directory name is a target. Defaults to Name(DefaultTarget).
	Predicate func(name string) bool
	// Concurrency is the number of workers. Values below 1 are treated as 1.
	Concurrency int
	// Log receives debug output.
	Log debug.Logger
}

// Result is the outcome of one scan.
type Result struct {
	// Root is the absolute path the scan started from.
	Root string `json:"root"`
	// Matches holds every target directory found, in no particular order.
	Matches []match.Record `json:"matches"`
	// Partial is set when the scan was cancelled before reaching quiescence.
	Partial bool `json:"partial"`
	// Visited is the number of directories listed.
	Visited int64 `json:"visited"`
	// Errors is the number of directories or entries that could not be read.
	Errors int64 `json:"errors"`
	// Elapsed is the wall time of the scan.
	Elapsed time.Duration `json:"elapsed"`
}

// Scanner walks directory trees looking for target directories.
// A Scanner runs one scan at a time.
type Scanner struct {
	opts Options

	visited atomic.Int64
	found   atomic.Int64
	errors  atomic.Int64
}

// New creates a Scanner, applying defaults to opts.
func New(opts Options) *Scanner {
	if opts.Predicate == nil {
		opts.Predicate = Name(DefaultTarget)
	}

	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}

	return &Scanner{opts: opts}
}

// Progress returns the number of directories listed and matches found so far
// by the running (or last) scan. It is safe to call concurrently with a scan.
func (s *Scanner) Progress() (visited, found int64) {
	return s.visited.Load(), s.found.Load()
}

// Scan walks root and returns every match once the walk is complete.
func (s *Scanner) Scan(ctx context.Context, root string) Result {
	return s.Walk(ctx, root, nil)
}

// Stream walks root and yields matches as they are found.
// Stopping the iteration early cancels the walk.
func (s *Scanner) Stream(ctx context.Context, root string) iter.Seq[match.Record] {
	return func(yield func(match.Record) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		out := make(chan match.Record)

		go func() {
			defer close(out)

			s.Walk(ctx, root, func(r match.Record) {
				select {
				case out <- r:
				case <-ctx.Done():
				}
			})
		}()

		for r := range out {
			if !yield(r) {
				cancel()

				break
			}
		}

		// Wait for the walk to wind down so no goroutine outlives the iteration.
		for range out {
		}
	}
}

// Walk walks root and returns every match, calling fn for each match as it is
// found. Calls to fn are serialized. A nonexistent or unreadable root yields
// an empty result rather than an error.
func (s *Scanner) Walk(ctx context.Context, root string, fn func(match.Record)) Result {
	log := s.opts.Log
	start := time.Now()

	s.visited.Store(0)
	s.found.Store(0)
	s.errors.Store(0)

	c := &collector{fn: fn}
	result := Result{Root: root}

	finish := func() Result {
		result.Matches = c.records()
		result.Visited = s.visited.Load()
		result.Errors = s.errors.Load()
		result.Elapsed = time.Since(start)

		return result
	}

	if ctx.Err() != nil {
		result.Partial = true

		return finish()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		log.Printf("resolving root %q: %v\n", root, err)

		return finish()
	}

	result.Root = abs

	info, err := os.Stat(abs)
	if err != nil {
		log.Printf("root %s is not accessible, nothing to scan: %v\n", abs, err)

		return finish()
	}

	if !info.IsDir() {
		log.Printf("root %s is not a directory, nothing to scan\n", abs)

		return finish()
	}

	// The root itself may be a target; it is reported and not descended into.
	if s.opts.Predicate(filepath.Base(abs)) {
		log.Printf("root %s is itself a target\n", abs)
		c.add(match.Record{Path: abs, ModifiedAt: info.ModTime()})
		s.found.Add(1)

		return finish()
	}

	q := newQueue()
	q.push(abs)

	stop := context.AfterFunc(ctx, func() {
		q.close()
	})

	var wg sync.WaitGroup

	for range s.opts.Concurrency {
		wg.Go(func() {
			s.work(q, c)
		})
	}

	wg.Wait()
	stop()

	result.Partial = q.aborted()
	if result.Partial {
		log.Printf("scan of %s cancelled, returning partial results\n", abs)
	}

	return finish()
}

// work pops directories until the queue reports quiescence or is closed.
func (s *Scanner) work(q *queue, c *collector) {
	for {
		dir, ok := q.pop()
		if !ok {
			return
		}

		s.visit(dir, q, c)
		q.done()
	}
}

// visit lists dir and classifies each child directory.
func (s *Scanner) visit(dir string, q *queue, c *collector) {
	log := s.opts.Log

	entries, err := os.ReadDir(dir)
	s.visited.Add(1)

	if err != nil {
		s.errors.Add(1)
		log.Printf("error listing %s: %v\n", dir, err)

		return
	}

	for _, entry := range entries {
		// Symlinks report a non-directory type and are never followed.
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)

		if !s.opts.Predicate(name) {
			q.push(path)

			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.errors.Add(1)
			log.Printf("error reading metadata of %s: %v\n", path, err)

			continue
		}

		c.add(match.Record{Path: path, ModifiedAt: info.ModTime()})
		s.found.Add(1)
	}
}

// collector gathers matches from concurrent workers.
type collector struct {
	mu      sync.Mutex
	matches []match.Record
	fn      func(match.Record)
}

func (c *collector) add(r match.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.matches = append(c.matches, r)

	if c.fn != nil {
		c.fn(r)
	}
}

func (c *collector) records() []match.Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]match.Record, len(c.matches))
	copy(out, c.matches)

	return out
}
