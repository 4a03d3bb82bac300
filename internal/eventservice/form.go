package eventservice

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/weekplan/internal/apperr"
	"github.com/starford/weekplan/internal/clock"
	"github.com/starford/weekplan/internal/models"
)

// DateLayout is the wire format of calendar days.
const DateLayout = "2006-01-02"

var clockField = regexp.MustCompile(`^(1[0-2]|[1-9]):[0-5]\d (AM|PM)$`)

// Form is the editable part of an event as submitted by the create and edit
// screens.
type Form struct {
	Type      string        `json:"type"`
	Title     string        `json:"title"`
	Notes     string        `json:"notes"`
	Address   string        `json:"address"`
	Date      string        `json:"date"`
	StartTime string        `json:"start_time"`
	EndTime   string        `json:"end_time"`
	Repeat    models.Repeat `json:"repeat"`
	Backup    bool          `json:"backup"`
}

// Validate implements validation.Validatable.
func (f Form) Validate() error {
	repeats := make([]any, len(models.RepeatOptions))
	for i, r := range models.RepeatOptions {
		repeats[i] = r
	}
	return validation.ValidateStruct(&f,
		validation.Field(&f.Type, validation.Required, validation.In(models.TypeNames()...)),
		validation.Field(&f.Title, validation.Length(0, 200)),
		validation.Field(&f.Date, validation.Required, validation.Date(DateLayout)),
		validation.Field(&f.StartTime, validation.Required, validation.Match(clockField)),
		validation.Field(&f.EndTime, validation.Required, validation.Match(clockField)),
		validation.Field(&f.Repeat, validation.In(repeats...)),
	)
}

// NewForm returns the defaults of the plus button: type Other, noon to
// 1:00 PM, not repeating.
func NewForm(date time.Time) Form {
	return Form{
		Type:      models.TypeOther,
		Date:      FormatDate(date),
		StartTime: clock.FormatHour(12, 0),
		EndTime:   clock.FormatHour(13, 0),
		Repeat:    models.RepeatNone,
	}
}

// SlotForm returns the defaults of tapping an empty hour slot. The type is
// left for the user to choose.
func SlotForm(date time.Time, hour int) Form {
	return Form{
		Date:      FormatDate(date),
		StartTime: clock.FormatHour(hour, 0),
		EndTime:   clock.FormatHour(hour+1, 0),
		Repeat:    models.RepeatNone,
	}
}

// FormFor returns the edit form of an existing event.
func FormFor(ev models.Event) Form {
	return Form{
		Type:      ev.Type,
		Title:     ev.Title,
		Notes:     ev.Notes,
		Address:   ev.Address,
		Date:      FormatDate(ev.Date),
		StartTime: ev.StartTime,
		EndTime:   ev.EndTime,
		Repeat:    ev.Repeat,
		Backup:    ev.Backup,
	}
}

// fromForm validates f and builds the event it describes. The title
// defaults to the type name and the colour comes from the palette.
func (s *Service) fromForm(f Form) (models.Event, error) {
	f.Title = strings.TrimSpace(f.Title)
	if f.Repeat == "" {
		f.Repeat = models.RepeatNone
	}
	if err := f.Validate(); err != nil {
		return models.Event{}, fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	date, err := s.ParseDate(f.Date)
	if err != nil {
		return models.Event{}, err
	}
	t := models.TypeOrOther(f.Type)
	title := f.Title
	if title == "" {
		title = t.Name
	}
	return models.Event{
		Type:      t.Name,
		Color:     t.Color,
		Title:     title,
		Notes:     f.Notes,
		Address:   f.Address,
		Date:      date,
		StartTime: f.StartTime,
		EndTime:   f.EndTime,
		Repeat:    f.Repeat,
		Backup:    f.Backup,
	}, nil
}

// ParseDate parses a YYYY-MM-DD day in the service's zone.
func (s *Service) ParseDate(v string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(v), s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", apperr.ErrInvalid, v)
	}
	return t, nil
}

// FormatDate renders a day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
