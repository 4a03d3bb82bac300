// Package ics converts events to and from iCalendar (RFC 5545) documents for
// backup export and inbox import.
package ics

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/starford/weekplan/internal/clock"
	"github.com/starford/weekplan/internal/models"
	"github.com/starford/weekplan/internal/recur"
	"github.com/starford/weekplan/internal/week"
)

const productID = "-//starford//weekplan//EN"

// ErrEmpty is returned by Decode for a calendar without events.
var ErrEmpty = errors.New("ics: empty calendar body")

// Encode renders events as a VCALENDAR. DTSTART and DTEND are built from the
// event day in loc and the clock strings; a negative duration is exported as
// a zero-length event.
func Encode(events []models.Event, loc *time.Location) []byte {
	if loc == nil {
		loc = time.Local
	}
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		start, end := Bounds(ev, loc)

		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(ev.UpdatedAt)
		if !ev.CreatedAt.IsZero() {
			ve.SetCreatedTime(ev.CreatedAt)
		}
		if !ev.UpdatedAt.IsZero() {
			ve.SetModifiedAt(ev.UpdatedAt)
		}
		ve.SetStartAt(start)
		ve.SetEndAt(end)
		ve.SetSummary(ev.Title)
		if ev.Notes != "" {
			ve.SetDescription(ev.Notes)
		}
		if ev.Address != "" {
			ve.SetLocation(ev.Address)
		}
		ve.SetProperty(ical.ComponentPropertyCategories, ev.Type)
		if rule := recur.Rule(ev.Repeat); rule != "" {
			ve.AddRrule(rule)
		}
	}
	return []byte(cal.Serialize())
}

// Bounds returns the absolute start and end of ev on its own day.
func Bounds(ev models.Event, loc *time.Location) (time.Time, time.Time) {
	y, m, d := ev.Date.In(loc).Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	start := midnight.Add(time.Duration(clock.ParseMinutes(ev.StartTime)) * time.Minute)
	end := midnight.Add(time.Duration(clock.ParseMinutes(ev.EndTime)) * time.Minute)
	if end.Before(start) {
		end = start
	}
	return start, end
}

// Decode parses a VCALENDAR into events. Times are converted into loc and
// rendered as clock strings; an event that ends on a later day is cut at
// 11:59 PM. Events without a UID receive a fresh one. Derived fields are
// recomputed; stamps are left zero when the document carries none.
func Decode(body []byte, loc *time.Location) ([]models.Event, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmpty
	}
	if loc == nil {
		loc = time.Local
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ics: parse: %w", err)
	}

	var out []models.Event
	for _, ve := range cal.Events() {
		ev, err := decodeEvent(ve, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func decodeEvent(ve *ical.VEvent, loc *time.Location) (models.Event, error) {
	var ev models.Event

	ev.ID = value(ve, ical.ComponentPropertyUniqueId)
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return ev, fmt.Errorf("ics: event %s: dtstart: %w", ev.ID, err)
	}
	start = start.In(loc)
	end, err := ve.GetEndAt()
	if err != nil {
		end = start.Add(time.Hour)
	}
	end = end.In(loc)

	ev.Date = week.StartOfDay(start)
	ev.StartTime = clock.FormatHour(start.Hour(), start.Minute())
	switch {
	case end.Before(start):
		ev.EndTime = ev.StartTime
	case !week.SameDay(start, end):
		ev.EndTime = clock.FormatHour(23, 59)
	default:
		ev.EndTime = clock.FormatHour(end.Hour(), end.Minute())
	}

	ev.Title = value(ve, ical.ComponentPropertySummary)
	ev.Notes = value(ve, ical.ComponentPropertyDescription)
	ev.Address = value(ve, ical.ComponentPropertyLocation)

	t := models.TypeOrOther(value(ve, ical.ComponentPropertyCategories))
	ev.Type = t.Name
	ev.Color = t.Color
	if ev.Title == "" {
		ev.Title = ev.Type
	}

	ev.Repeat = recur.FromRule(value(ve, ical.ComponentPropertyRrule))
	ev.CreatedAt = stamp(value(ve, ical.ComponentPropertyCreated))
	ev.UpdatedAt = stamp(value(ve, ical.ComponentPropertyLastModified))
	ev.Recompute(clock.Default)
	return ev, nil
}

func value(ve *ical.VEvent, p ical.ComponentProperty) string {
	if prop := ve.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}

func stamp(s string) time.Time {
	t, err := time.Parse("20060102T150405Z", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
