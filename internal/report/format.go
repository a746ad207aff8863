package report

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

//nolint:gochecknoglobals // Lookup tables
var (
	sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

	ageMagnitudes = []humanize.RelTimeMagnitude{
		{D: Day, Format: "today", DivBy: 1},
		{D: 2 * Day, Format: "1 day %s", DivBy: 1},
		{D: 30 * Day, Format: "%d days %s", DivBy: Day},
		{D: 60 * Day, Format: "1 month %s", DivBy: 1},
		{D: 365 * Day, Format: "%d months %s", DivBy: 30 * Day},
		{D: 2 * 365 * Day, Format: "1 year %s", DivBy: 1},
		{D: math.MaxInt64, Format: "%d years %s", DivBy: 365 * Day},
	}
)

// FormatSize renders n bytes with one decimal in binary units, e.g. "1.5 KB".
func FormatSize(n uint64) string {
	value := float64(n)
	unit := 0

	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	return fmt.Sprintf("%.1f %s", value, sizeUnits[unit])
}

// FormatAge renders how long ago t was relative to now, e.g. "5 days ago".
func FormatAge(t, now time.Time) string {
	return humanize.CustomRelTime(t, now, "ago", "from now", ageMagnitudes)
}
