package nmclean

import (
	"context"
	"fmt"
	"time"

	"github.com/idelchi/nmclean/internal/debug"
	"github.com/idelchi/nmclean/internal/match"
	"github.com/idelchi/nmclean/internal/prune"
	"github.com/idelchi/nmclean/internal/report"
	"github.com/idelchi/nmclean/internal/scan"
	"github.com/idelchi/nmclean/internal/size"
)

// startProgressReporter invokes hook(visited, found) on each tick until ctx is done.
func startProgressReporter(ctx context.Context, s *scan.Scanner, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(s.Progress())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Run scans opt.Path for opt.Target directories and returns them sized,
// filtered and sorted according to opt.
//
// The scan can be cancelled via ctx or bounded by opt.Timeout; either yields
// a partial report rather than an error. Progress updates are sent to
// progressHook while the scan runs if provided.
func Run(ctx context.Context, opt Options, progressHook func(visited, found int64)) (*Report, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}

	log := debug.New(opt.Debug)
	start := time.Now()

	resolver, err := size.New(opt.SizeStrategy, opt.Concurrency, log)
	if err != nil {
		return nil, fmt.Errorf("configuring size resolver: %w", err)
	}

	log.Printf("scanning %s for %q with %d workers\n", opt.Path, opt.Target, opt.Concurrency)

	scanner := scan.New(scan.Options{
		Predicate:   scan.Name(opt.Target),
		Concurrency: opt.Concurrency,
		Log:         log,
	})

	result := scanWithDeadline(ctx, scanner, opt, progressHook)

	log.Printf("visited %d directories, found %d matches, %d errors in %v\n",
		result.Visited, len(result.Matches), result.Errors, result.Elapsed)

	// Age filtering needs no size, so it runs first to spare the resolver work.
	records := result.Matches
	if opt.OlderThan > 0 {
		records = report.FilterByAge(records, opt.OlderThan)
		log.Printf("%d matches older than %d days\n", len(records), opt.OlderThan)
	}

	sizes := resolver.Resolve(ctx, size.Paths(records))
	records = size.Apply(records, sizes)

	log.Printf("resolved %d of %d sizes using %s\n", len(sizes), len(records), opt.SizeStrategy)

	records = report.FilterBySize(records, opt.MinSize)
	records = Order(records, opt)

	total, unknown := report.Totals(records)

	return &Report{
		Root:       result.Root,
		Target:     opt.Target,
		Matches:    records,
		Found:      len(result.Matches),
		TotalBytes: total,
		Unknown:    unknown,
		Partial:    result.Partial,
		Visited:    result.Visited,
		Errors:     result.Errors,
		Elapsed:    time.Since(start),
	}, nil
}

// scanWithDeadline runs the scan under opt.Timeout with the progress reporter attached.
func scanWithDeadline(ctx context.Context, s *scan.Scanner, opt Options, hook func(int64, int64)) scan.Result {
	scanCtx := ctx

	if opt.Timeout > 0 {
		var cancel context.CancelFunc

		scanCtx, cancel = context.WithTimeout(ctx, opt.Timeout)
		defer cancel()
	}

	// Child context so the progress reporter stops with the scan.
	progressCtx, stop := context.WithCancel(ctx)
	defer stop()

	startProgressReporter(progressCtx, s, hook, opt.ProgressInterval)

	return s.Scan(scanCtx, opt.Path)
}

// Order sorts records by size or age as selected by opt.
func Order(records []match.Record, opt Options) []match.Record {
	if opt.SortBySize {
		return report.SortBySize(records)
	}

	return report.SortByAge(records, opt.NewestFirst)
}

// Prune deletes records with the concurrency, dry-run and debug settings of opt.
func Prune(ctx context.Context, opt Options, records []match.Record, progress func(done, total int, path string)) prune.Summary {
	return prune.Delete(ctx, records, prune.Options{
		Concurrency: opt.Concurrency,
		DryRun:      opt.DryRun,
		Log:         debug.New(opt.Debug),
		Progress:    progress,
	})
}
