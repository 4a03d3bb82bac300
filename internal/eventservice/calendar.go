package eventservice

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/starford/weekplan/internal/clock"
	"github.com/starford/weekplan/internal/geometry"
	"github.com/starford/weekplan/internal/models"
	"github.com/starford/weekplan/internal/recur"
	"github.com/starford/weekplan/internal/sse"
	"github.com/starford/weekplan/internal/week"
)

const selectedKey = "selected_date"

// Occurrence is one appearance of an event on a specific day, laid out for
// the day column.
type Occurrence struct {
	models.Event
	Day time.Time    `json:"day"`
	Box geometry.Box `json:"box"`
}

// DayView is one day column.
type DayView struct {
	Date        time.Time    `json:"date"`
	Header      string       `json:"header"`
	Occurrences []Occurrence `json:"occurrences"`
}

// WeekView is the Wednesday-anchored week strip with its day columns.
type WeekView struct {
	Selected   time.Time      `json:"selected"`
	Header     string         `json:"header"`
	HourLabels []string       `json:"hour_labels"`
	Days       []week.WeekDay `json:"days"`
	Columns    []DayView      `json:"columns"`
}

// List returns every occurrence in [from, to), recurring events expanded,
// ordered by day then start time.
func (s *Service) List(ctx context.Context, from, to time.Time) ([]Occurrence, error) {
	from = week.StartOfDay(from.In(s.loc))
	to = week.StartOfDay(to.In(s.loc))
	events, err := s.events.ListEvents(ctx, from, to)
	if err != nil {
		return nil, err
	}
	out := []Occurrence{}
	for _, ev := range events {
		box := geometry.Layout(ev, 0)
		for _, d := range recur.Days(ev, from, to) {
			out = append(out, Occurrence{Event: ev, Day: week.StartOfDay(d.In(s.loc)), Box: box})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Day.Equal(out[j].Day) {
			return out[i].Day.Before(out[j].Day)
		}
		mi, mj := s.codec.Minutes(out[i].StartTime), s.codec.Minutes(out[j].StartTime)
		if mi != mj {
			return mi < mj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Events returns the stored events touching [from, to) without expanding
// recurrences. Recurring events starting before to are included.
func (s *Service) Events(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	from = week.StartOfDay(from.In(s.loc))
	to = week.StartOfDay(to.In(s.loc))
	out, err := s.events.ListEvents(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(out), nil
}

// Location returns the zone calendar days are interpreted in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Day returns the column of a single day.
func (s *Service) Day(ctx context.Context, date time.Time) (*DayView, error) {
	day := week.StartOfDay(date.In(s.loc))
	occ, err := s.List(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return &DayView{Date: day, Header: clock.FormatHeaderDate(day), Occurrences: occ}, nil
}

// Week returns the week containing ref, with the selected day marked.
func (s *Service) Week(ctx context.Context, ref time.Time) (*WeekView, error) {
	ref = ref.In(s.loc)
	selected := s.engine.Selected()
	from, to := week.Range(ref)
	occ, err := s.List(ctx, from, to)
	if err != nil {
		return nil, err
	}

	days := week.Days(ref, selected)
	cols := make([]DayView, len(days))
	for i, d := range days {
		cols[i] = DayView{Date: d.Date, Header: clock.FormatHeaderDate(d.Date), Occurrences: []Occurrence{}}
	}
	for _, o := range occ {
		i := int(o.Day.Sub(from).Hours()+12) / 24 // tolerate DST-length days
		if i >= 0 && i < len(cols) {
			cols[i].Occurrences = append(cols[i].Occurrences, o)
		}
	}
	return &WeekView{
		Selected:   selected,
		Header:     clock.FormatHeaderDate(selected),
		HourLabels: clock.HourLabels(),
		Days:       days,
		Columns:    cols,
	}, nil
}

// SelectedDate returns the displayed day.
func (s *Service) SelectedDate() time.Time {
	return s.engine.Selected()
}

// Select changes the displayed day, persists it and notifies views.
func (s *Service) Select(ctx context.Context, date time.Time) time.Time {
	s.engine.Select(date.In(s.loc))
	return s.selectionChanged(ctx)
}

// RestoreSelected loads the persisted selected day, if any.
func (s *Service) RestoreSelected(ctx context.Context) error {
	if s.settings == nil {
		return nil
	}
	v, ok, err := s.settings.GetSetting(ctx, selectedKey)
	if err != nil || !ok {
		return err
	}
	d, err := s.ParseDate(v)
	if err != nil {
		s.logger.Warn("ignoring stored selected date", slog.String("value", v))
		return nil
	}
	s.engine.Select(d)
	return nil
}

func (s *Service) selectionChanged(ctx context.Context) time.Time {
	sel := s.engine.Selected()
	if s.settings != nil {
		if err := s.settings.SetSetting(ctx, selectedKey, FormatDate(sel)); err != nil {
			s.logger.Warn("persist selected date failed", slog.String("error", err.Error()))
		}
	}
	s.pub.Publish(sse.Event{Type: sse.DateSelected, Data: map[string]string{
		"date":   FormatDate(sel),
		"header": clock.FormatHeaderDate(sel),
	}})
	return sel
}
