package size

import (
	"context"
	"fmt"

	"github.com/idelchi/nmclean/internal/debug"
	"github.com/idelchi/nmclean/internal/match"
)

const (
	// StrategyWalk sums file sizes in-process.
	StrategyWalk = "walk"
	// StrategyDu delegates to the external du tool.
	StrategyDu = "du"
)

// Strategies lists the accepted strategy names.
//
//nolint:gochecknoglobals // Config constant
var Strategies = []string{StrategyWalk, StrategyDu}

// Resolver computes directory sizes in bytes.
// Paths whose size could not be determined are absent from the returned map.
type Resolver interface {
	Resolve(ctx context.Context, paths []string) map[string]uint64
}

// New returns the resolver for strategy.
func New(strategy string, concurrency int, log debug.Logger) (Resolver, error) {
	switch strategy {
	case StrategyWalk, "":
		return Walker{Concurrency: concurrency, Log: log}, nil
	case StrategyDu:
		return Du{Concurrency: concurrency, Log: log}, nil
	default:
		return nil, fmt.Errorf("unknown size strategy %q: must be one of %v", strategy, Strategies)
	}
}

// Paths returns the paths of records.
func Paths(records []match.Record) []string {
	paths := make([]string, len(records))
	for i, r := range records {
		paths[i] = r.Path
	}

	return paths
}

// Apply returns copies of records with sizes attached. Records absent from
// sizes keep an unknown size.
func Apply(records []match.Record, sizes map[string]uint64) []match.Record {
	out := make([]match.Record, len(records))

	for i, r := range records {
		if n, ok := sizes[r.Path]; ok {
			r = r.WithSize(n)
		}

		out[i] = r
	}

	return out
}

func limit(concurrency int) int {
	if concurrency < 1 {
		return 1
	}

	return concurrency
}
