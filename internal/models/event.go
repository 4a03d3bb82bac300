// Package models defines the domain types for weekplan.
package models

import (
	"time"

	"github.com/starford/weekplan/internal/clock"
)

// Event is a scheduled calendar item.
//
// StartTime and EndTime are the source of truth; Time and Duration are caches
// derived from them by Recompute.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Color     string    `json:"color"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes,omitempty"`
	Address   string    `json:"address,omitempty"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Time      int       `json:"time"`     // start hour, 24-hour
	Duration  float64   `json:"duration"` // hours, may be negative
	Repeat    Repeat    `json:"repeat"`
	Backup    bool      `json:"backup"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Recompute refreshes Time and Duration from StartTime and EndTime.
func (e *Event) Recompute(c clock.Codec) {
	if c == nil {
		c = clock.Default
	}
	e.Time = c.Hour(e.StartTime)
	e.Duration = float64(c.Minutes(e.EndTime)-c.Minutes(e.StartTime)) / 60
}

// DurationMinutes returns the signed event length in minutes, derived from
// the clock strings rather than the cached Duration.
func (e *Event) DurationMinutes(c clock.Codec) int {
	if c == nil {
		c = clock.Default
	}
	return c.Minutes(e.EndTime) - c.Minutes(e.StartTime)
}

// Repeat is the recurrence option stored on an event.
type Repeat string

// Repeat options.
const (
	RepeatNone    Repeat = "Does not repeat"
	RepeatDaily   Repeat = "Daily"
	RepeatWeekly  Repeat = "Weekly"
	RepeatMonthly Repeat = "Monthly"
	RepeatYearly  Repeat = "Yearly"
)

// RepeatOptions lists every Repeat value in display order.
var RepeatOptions = []Repeat{RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly}

// Recurring reports whether r expands into more than one occurrence.
func (r Repeat) Recurring() bool {
	return r != "" && r != RepeatNone
}
