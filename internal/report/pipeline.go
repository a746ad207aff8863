// Package report sorts, filters and formats scan results. It performs no I/O.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/idelchi/nmclean/internal/match"
)

// Day is the length of one day used for age thresholds.
const Day = 24 * time.Hour

// SortByAge returns records ordered by modification time, newest first when
// newestFirst is set. Records with equal timestamps keep their relative order.
func SortByAge(records []match.Record, newestFirst bool) []match.Record {
	out := slices.Clone(records)

	slices.SortStableFunc(out, func(a, b match.Record) int {
		if newestFirst {
			return b.ModifiedAt.Compare(a.ModifiedAt)
		}

		return a.ModifiedAt.Compare(b.ModifiedAt)
	})

	return out
}

// SortBySize returns records ordered largest first. Unknown sizes sort as zero.
func SortBySize(records []match.Record) []match.Record {
	out := slices.Clone(records)

	slices.SortStableFunc(out, func(a, b match.Record) int {
		sa, _ := a.Size()
		sb, _ := b.Size()

		return cmp.Compare(sb, sa)
	})

	return out
}

// FilterByAge keeps records modified strictly more than days days ago.
func FilterByAge(records []match.Record, days int) []match.Record {
	return FilterByAgeAt(records, days, time.Now())
}

// FilterByAgeAt is FilterByAge with an explicit reference time.
func FilterByAgeAt(records []match.Record, days int, now time.Time) []match.Record {
	cutoff := now.Add(-time.Duration(days) * Day)

	out := make([]match.Record, 0, len(records))

	for _, r := range records {
		if r.ModifiedAt.Before(cutoff) {
			out = append(out, r)
		}
	}

	return out
}

// FilterBySize keeps records whose known size is at least minBytes.
// A zero minimum keeps every record, including those of unknown size.
func FilterBySize(records []match.Record, minBytes uint64) []match.Record {
	if minBytes == 0 {
		return slices.Clone(records)
	}

	out := make([]match.Record, 0, len(records))

	for _, r := range records {
		if n, ok := r.Size(); ok && n >= minBytes {
			out = append(out, r)
		}
	}

	return out
}

// Totals sums the known sizes and counts the records of unknown size.
func Totals(records []match.Record) (known uint64, unknown int) {
	for _, r := range records {
		n, ok := r.Size()
		if !ok {
			unknown++

			continue
		}

		known += n
	}

	return known, unknown
}
