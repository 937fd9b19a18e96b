package mapper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDayOffset_WholeDays(t *testing.T) {
	assert.Equal(t, 0, DayOffset(date("2024-06-01"), date("2024-06-01")), "same day should be offset 0")
	assert.Equal(t, 1, DayOffset(date("2024-06-01"), date("2024-06-02")), "next day should be offset 1")
	assert.Equal(t, 29, DayOffset(date("2024-06-01"), date("2024-06-30")), "June 1 to June 30 spans 29 days")
}

func TestDayOffset_FloorsPartialDays(t *testing.T) {
	reference := date("2024-06-01")
	target := date("2024-06-03").Add(6 * time.Hour)

	assert.Equal(t, 2, DayOffset(reference, target), "partial days should floor, not round")
}

func TestDayOffset_NegativeSpan(t *testing.T) {
	assert.Equal(t, -1, DayOffset(date("2024-06-02"), date("2024-06-01")), "target before reference should be negative")

	// Floors toward negative infinity for partial negative spans too.
	target := date("2024-06-01").Add(18 * time.Hour)
	assert.Equal(t, -1, DayOffset(date("2024-06-02"), target), "partial negative day should floor to -1")
}

func TestStartDayOffset_ClampsToZero(t *testing.T) {
	assert.Equal(t, 0, StartDayOffset(date("2024-06-05"), date("2024-06-01")), "start before reference should clamp to 0")
	assert.Equal(t, 3, StartDayOffset(date("2024-06-01"), date("2024-06-04")), "positive offsets should pass through")
}

func TestEndDayOffset_ClampsToOne(t *testing.T) {
	assert.Equal(t, 1, EndDayOffset(date("2024-06-01"), date("2024-06-01")), "same-day end should clamp to 1")
	assert.Equal(t, 1, EndDayOffset(date("2024-06-05"), date("2024-06-01")), "end before reference should clamp to 1")
	assert.Equal(t, 29, EndDayOffset(date("2024-06-01"), date("2024-06-30")), "positive offsets should pass through")
}

func TestDayOffset_MonotonicOverWindow(t *testing.T) {
	reference := date("2024-06-01")
	previous := DayOffset(reference, reference)
	for day := 1; day <= 120; day++ {
		current := DayOffset(reference, reference.AddDate(0, 0, day))
		assert.GreaterOrEqual(t, current, previous, "offsets must not decrease as the target advances")
		previous = current
	}
}
