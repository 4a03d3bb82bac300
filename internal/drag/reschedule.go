package drag

import (
	"math"
	"time"

	"github.com/starford/weekplan/internal/clock"
	"github.com/starford/weekplan/internal/geometry"
	"github.com/starford/weekplan/internal/models"
	"github.com/starford/weekplan/internal/week"
)

const (
	// SnapMinutes is the grid a committed drag snaps to.
	SnapMinutes = 15
	// LastSlotMinutes is the latest start a drag can produce (11:45 PM).
	LastSlotMinutes = 23*60 + 45
	// LastMinuteOfDay caps a rescheduled end time (11:59 PM).
	LastMinuteOfDay = 23*60 + 59
)

// MinutesForDelta converts a vertical pointer delta into minutes.
func MinutesForDelta(deltaY float64) int {
	return int(jsRound(deltaY / geometry.PixelsPerHour * 60))
}

// Reschedule moves ev by minutesMoved onto date. The new start is snapped to
// the 15-minute grid and clamped to [12:00 AM, 11:45 PM]. The end keeps the
// original signed duration but is clamped to the same day, [12:00 AM,
// 11:59 PM]. Derived fields are recomputed from the new clock strings.
func Reschedule(c clock.Codec, ev models.Event, minutesMoved int, date, now time.Time) models.Event {
	if c == nil {
		c = clock.Default
	}
	total := c.Hour(ev.StartTime)*60 + int(jsRound(c.Offset(ev.StartTime)*60)) + minutesMoved
	start := Snap(total)
	end := clampInt(start+ev.DurationMinutes(c), 0, LastMinuteOfDay)

	out := ev
	out.StartTime = clock.FormatMinutes(c, start)
	out.EndTime = clock.FormatMinutes(c, end)
	out.Date = week.StartOfDay(date)
	out.UpdatedAt = now
	out.Recompute(c)
	return out
}

// Snap rounds minutes to the nearest 15-minute boundary and clamps the
// result to the day's valid start slots.
func Snap(minutes int) int {
	snapped := int(jsRound(float64(minutes)/SnapMinutes)) * SnapMinutes
	return clampInt(snapped, 0, LastSlotMinutes)
}

// jsRound rounds half-way values towards positive infinity.
func jsRound(x float64) float64 {
	return math.Floor(x + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
