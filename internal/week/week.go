// Package week computes the seven-day display window and the month grid
// used by the date picker.
package week

import "time"

// Len is the number of days in the display window.
const Len = 7

var dayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WeekDay is one column header of the week strip.
type WeekDay struct {
	Name       string    `json:"name"`
	DayOfMonth int       `json:"day_of_month"`
	Date       time.Time `json:"date"`
	Selected   bool      `json:"selected"`
}

// Days returns the seven days anchored on the Wednesday on or before ref,
// ordered Wed, Thu, Fri, Sat, Sun, Mon, Tue. Selected marks the entry that
// falls on the same calendar day as selected.
func Days(ref, selected time.Time) []WeekDay {
	start := Start(ref)
	out := make([]WeekDay, Len)
	for i := range out {
		d := start.AddDate(0, 0, i)
		out[i] = WeekDay{
			Name:       dayNames[d.Weekday()],
			DayOfMonth: d.Day(),
			Date:       d,
			Selected:   SameDay(d, selected),
		}
	}
	return out
}

// Start returns midnight of the Wednesday on or before ref.
func Start(ref time.Time) time.Time {
	back := (int(ref.Weekday()) + 4) % 7
	return StartOfDay(ref).AddDate(0, 0, -back)
}

// Range returns the half-open interval [from, to) covered by Days(ref).
func Range(ref time.Time) (time.Time, time.Time) {
	from := Start(ref)
	return from, from.AddDate(0, 0, Len)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day, ignoring
// the time of day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ShiftDays moves t by n calendar days.
func ShiftDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// MonthGrid returns the date-picker cells of a month, Sunday first. Leading
// cells before the 1st are 0.
func MonthGrid(year int, month time.Month) []int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	lead := int(first.Weekday())
	out := make([]int, 0, lead+last.Day())
	for i := 0; i < lead; i++ {
		out = append(out, 0)
	}
	for d := 1; d <= last.Day(); d++ {
		out = append(out, d)
	}
	return out
}
