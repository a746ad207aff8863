package nmclean

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"github.com/idelchi/nmclean/internal/match"
	"github.com/idelchi/nmclean/internal/scan"
	"github.com/idelchi/nmclean/internal/size"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 200 * time.Millisecond

// Outputs lists the accepted output formats.
//
//nolint:gochecknoglobals // Config constant
var Outputs = []string{"table", "json"}

// DefaultConcurrency is one less than the number of CPUs, and at least 1.
func DefaultConcurrency() int {
	return max(runtime.NumCPU()-1, 1)
}

// Options configures a cleanup run and CLI behavior.
type Options struct {
	// Path is the directory to scan.
	Path string
	// Target is the directory name to look for.
	Target string
	// Concurrency bounds scanning, sizing and deletion.
	Concurrency int
	// SortBySize orders results largest first instead of by age.
	SortBySize bool
	// NewestFirst orders the age sort newest first.
	NewestFirst bool
	// OlderThan keeps only results older than this many days (0 = all).
	OlderThan int
	// MinSize keeps only results at least this many bytes (0 = all).
	MinSize uint64
	// SizeStrategy selects the size resolver (walk or du).
	SizeStrategy string
	// Timeout bounds the scan; an expired scan returns partial results (0 = none).
	Timeout time.Duration
	// Delete removes the results after listing them.
	Delete bool
	// Yes skips the confirmation prompt.
	Yes bool
	// DryRun reports deletions without removing anything.
	DryRun bool
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Debug indicates whether debug output is enabled.
	Debug bool
	// Output represents output format (table or json).
	Output string
}

// Validate applies defaults and rejects invalid values.
func (o *Options) Validate() error {
	if o.Path == "" {
		o.Path = "."
	}

	if o.Target == "" {
		o.Target = scan.DefaultTarget
	}

	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency()
	}

	if o.SizeStrategy == "" {
		o.SizeStrategy = size.StrategyWalk
	}

	if o.Output == "" {
		o.Output = "table"
	}

	if o.ProgressInterval <= 0 {
		o.ProgressInterval = DefaultProgressInterval
	}

	if o.OlderThan < 0 {
		return errors.New("older-than cannot be negative")
	}

	if o.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}

	if !slices.Contains(size.Strategies, o.SizeStrategy) {
		return fmt.Errorf("invalid size strategy %q: must be one of %v", o.SizeStrategy, size.Strategies)
	}

	if !slices.Contains(Outputs, o.Output) {
		return fmt.Errorf("invalid output format %q: must be one of %v", o.Output, Outputs)
	}

	return nil
}

// Report is the filtered, sorted outcome of a run.
type Report struct {
	// Root is the absolute path that was scanned.
	Root string `json:"root"`
	// Target is the directory name looked for.
	Target string `json:"target"`
	// Matches are the reported directories in display order.
	Matches []match.Record `json:"matches"`
	// Found is the number of matches before filtering.
	Found int `json:"found"`
	// TotalBytes is the sum of the known sizes of Matches.
	TotalBytes uint64 `json:"total_bytes"`
	// Unknown is the number of Matches whose size could not be resolved.
	Unknown int `json:"unknown"`
	// Partial is set when the scan was cancelled or timed out.
	Partial bool `json:"partial"`
	// Visited is the number of directories listed.
	Visited int64 `json:"visited"`
	// Errors is the number of unreadable directories or entries.
	Errors int64 `json:"errors"`
	// Elapsed is the total time taken for the run.
	Elapsed time.Duration `json:"elapsed"`
}
