// Package timefmt renders playback positions for the time display.
package timefmt

import (
	"fmt"
	"math"
)

// Format converts seconds to a zero-padded "MM:SS" string.
// NaN, infinite, negative and out of int64 range inputs render as "00:00".
func Format(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 || seconds >= math.MaxInt64 {
		return "00:00"
	}
	total := int64(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Label renders the elapsed/total label, e.g. "01:05/03:20"
func Label(current, duration float64) string {
	return Format(current) + "/" + Format(duration)
}
