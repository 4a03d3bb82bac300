// Package recur maps event Repeat options onto RFC 5545 recurrence rules and
// expands them into concrete days.
package recur

import (
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/starford/weekplan/internal/models"
)

// MaxOccurrences caps the expansion of a single event within one window.
const MaxOccurrences = 400

var freqs = map[models.Repeat]rrule.Frequency{
	models.RepeatDaily:   rrule.DAILY,
	models.RepeatWeekly:  rrule.WEEKLY,
	models.RepeatMonthly: rrule.MONTHLY,
	models.RepeatYearly:  rrule.YEARLY,
}

// Rule returns the RRULE value for r, or "" for a non-recurring event.
func Rule(r models.Repeat) string {
	freq, ok := freqs[r]
	if !ok {
		return ""
	}
	opt := rrule.ROption{Freq: freq}
	return strings.TrimPrefix(opt.RRuleString(), "RRULE:")
}

// FromRule maps an RRULE value back onto the closest Repeat option. Rules
// with a frequency finer than a day, or that fail to parse, map to
// RepeatNone.
func FromRule(s string) models.Repeat {
	s = strings.TrimPrefix(strings.TrimSpace(s), "RRULE:")
	if s == "" {
		return models.RepeatNone
	}
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return models.RepeatNone
	}
	for r, f := range freqs {
		if f == opt.Freq {
			return r
		}
	}
	return models.RepeatNone
}

// Days returns the midnight of every day in [from, to) on which ev occurs.
// A non-recurring event yields its own date when it falls in range.
func Days(ev models.Event, from, to time.Time) []time.Time {
	if !ev.Repeat.Recurring() {
		if !ev.Date.Before(from) && ev.Date.Before(to) {
			return []time.Time{ev.Date}
		}
		return nil
	}
	freq, ok := freqs[ev.Repeat]
	if !ok {
		return nil
	}
	r, err := rrule.NewRRule(rrule.ROption{Freq: freq, Dtstart: ev.Date})
	if err != nil {
		return nil
	}

	var set rrule.Set
	set.RRule(r)
	// Between is inclusive on both ends with inc=true; the window is half-open.
	out := set.Between(from.In(ev.Date.Location()), to.In(ev.Date.Location()).Add(-time.Nanosecond), true)
	if len(out) > MaxOccurrences {
		out = out[:MaxOccurrences]
	}
	return out
}
