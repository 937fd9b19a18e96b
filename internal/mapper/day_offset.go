package mapper

import (
	"math"
	"time"
)

// The optimizer addresses coverage windows as day offsets from the
// product's earliest coverage date. Offsets floor rather than round, and
// are clamped so the optimizer never sees a negative start or a
// degenerate end.

// DayOffset returns the whole number of days from reference to target,
// flooring partial days.
func DayOffset(reference, target time.Time) int {
	return int(math.Floor(target.Sub(reference).Hours() / 24))
}

// StartDayOffset clamps a period start offset to zero or later.
func StartDayOffset(reference, target time.Time) int {
	return max(0, DayOffset(reference, target))
}

// EndDayOffset clamps a period end offset to at least day one.
func EndDayOffset(reference, target time.Time) int {
	return max(1, DayOffset(reference, target))
}
