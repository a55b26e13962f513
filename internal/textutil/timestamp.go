package textutil

import (
	"fmt"
	"math"
)

// FormatTimestamp renders seconds as [HH:]MM:SS<marker>mmm. Hours are always
// included when alwaysIncludeHours is set, otherwise only when non-zero. An
// empty marker drops the milliseconds. Negative input is clamped to zero.
func FormatTimestamp(seconds float64, alwaysIncludeHours bool, marker string) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	milliseconds := int64(math.Round(seconds * 1000))

	hours := milliseconds / 3_600_000
	milliseconds -= hours * 3_600_000
	minutes := milliseconds / 60_000
	milliseconds -= minutes * 60_000
	secs := milliseconds / 1_000
	milliseconds -= secs * 1_000

	main := fmt.Sprintf("%02d:%02d", minutes, secs)
	if alwaysIncludeHours || hours > 0 {
		main = fmt.Sprintf("%02d:%s", hours, main)
	}
	if marker == "" {
		return main
	}
	return fmt.Sprintf("%s%s%03d", main, marker, milliseconds)
}
