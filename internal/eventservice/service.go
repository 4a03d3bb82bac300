// Package eventservice owns the event collection: it validates edits,
// persists them, lays out days and weeks, drives the drag engine and pushes
// every change to connected views.
package eventservice

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/starford/weekplan/internal/apperr"
	"github.com/starford/weekplan/internal/checksum"
	"github.com/starford/weekplan/internal/clock"
	"github.com/starford/weekplan/internal/drag"
	"github.com/starford/weekplan/internal/models"
	"github.com/starford/weekplan/internal/sse"
	"github.com/starford/weekplan/internal/store"
	"github.com/starford/weekplan/internal/week"
)

// Publisher receives change notifications. *sse.Broker satisfies it.
type Publisher interface {
	Publish(event sse.Event)
	PublishChange(kind string, c sse.Change)
}

type nopPublisher struct{}

func (nopPublisher) Publish(sse.Event)                {}
func (nopPublisher) PublishChange(string, sse.Change) {}

// EventDetail is the full representation of an event.
type EventDetail struct {
	models.Event
	Checksum  string `json:"checksum"`
	NotesHTML string `json:"notes_html,omitempty"`
}

// Service coordinates the store, the drag engine and the broker.
type Service struct {
	events   store.EventStore
	settings store.SettingsStore
	pub      Publisher
	engine   *drag.Engine
	codec    clock.Codec
	loc      *time.Location
	now      func() time.Time
	md       goldmark.Markdown
	logger   *slog.Logger

	dragOpts []drag.Option
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the change sink.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithSettings persists the selected day.
func WithSettings(st store.SettingsStore) Option {
	return func(s *Service) { s.settings = st }
}

// WithLocation sets the zone calendar days are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithClock sets the time source for stamps, the default day and the drag
// engine.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithCodec sets the clock-string codec.
func WithCodec(c clock.Codec) Option {
	return func(s *Service) { s.codec = c }
}

// WithDragOptions passes extra options to the drag engine.
func WithDragOptions(opts ...drag.Option) Option {
	return func(s *Service) { s.dragOpts = append(s.dragOpts, opts...) }
}

// New creates a Service. The selected day starts at today; call
// RestoreSelected to load a persisted one.
func New(events store.EventStore, opts ...Option) *Service {
	s := &Service{
		events: events,
		pub:    nopPublisher{},
		codec:  clock.Default,
		loc:    time.Local,
		now:    time.Now,
		md:     goldmark.New(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	engineOpts := append([]drag.Option{
		drag.WithCodec(s.codec),
		drag.WithClock(s.now),
		drag.WithOnExpire(s.undoExpired),
	}, s.dragOpts...)
	s.engine = drag.New(s.now().In(s.loc), engineOpts...)
	return s
}

// Get returns an event with its checksum and rendered notes.
func (s *Service) Get(ctx context.Context, id string) (*EventDetail, error) {
	ev, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ev)
}

// Create validates f and stores a new event.
func (s *Service) Create(ctx context.Context, f Form) (*EventDetail, error) {
	ev, err := s.fromForm(f)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ev.ID = uuid.NewString()
	ev.CreatedAt = now
	ev.UpdatedAt = now
	s.canonical(&ev)

	if err := s.events.UpsertEvent(ctx, ev); err != nil {
		return nil, err
	}
	s.pub.PublishChange(sse.EventCreated, s.change(ev))
	return s.detail(ev)
}

// Update replaces the editable fields of an event. A non-empty ifMatch must
// equal the current checksum.
func (s *Service) Update(ctx context.Context, id string, f Form, ifMatch string) (*EventDetail, error) {
	cur, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" {
		sum, err := checksum.Of(cur)
		if err != nil {
			return nil, err
		}
		if ifMatch != sum {
			return nil, apperr.ErrConflict
		}
	}
	ev, err := s.fromForm(f)
	if err != nil {
		return nil, err
	}
	ev.ID = cur.ID
	ev.CreatedAt = cur.CreatedAt
	ev.UpdatedAt = s.now()
	s.canonical(&ev)

	if err := s.events.UpsertEvent(ctx, ev); err != nil {
		return nil, err
	}
	s.pub.PublishChange(sse.EventUpdated, s.change(ev))
	return s.detail(ev)
}

// Duplicate copies an event under a new id with fresh stamps.
func (s *Service) Duplicate(ctx context.Context, id string) (*EventDetail, error) {
	ev, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ev.ID = uuid.NewString()
	ev.CreatedAt = now
	ev.UpdatedAt = now
	s.canonical(&ev)

	if err := s.events.UpsertEvent(ctx, ev); err != nil {
		return nil, err
	}
	s.pub.PublishChange(sse.EventCreated, s.change(ev))
	return s.detail(ev)
}

// Delete removes an event.
func (s *Service) Delete(ctx context.Context, id string) error {
	ev, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if err := s.events.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.engine.Discard(id)
	s.pub.PublishChange(sse.EventDeleted, s.change(ev))
	return nil
}

// Move reschedules an event by minutes onto date without an undo. A zero
// date keeps the event's own day.
func (s *Service) Move(ctx context.Context, id string, minutes int, date time.Time) (*EventDetail, error) {
	ev, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = ev.Date
	}
	moved := drag.Reschedule(s.codec, ev, minutes, date.In(s.loc), s.now())
	s.canonical(&moved)
	if err := s.events.UpsertEvent(ctx, moved); err != nil {
		return nil, err
	}
	s.pub.PublishChange(sse.EventMoved, s.change(moved))
	return s.detail(moved)
}

// Search runs a full-text query over event text.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]store.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", apperr.ErrInvalid)
	}
	out, err := s.events.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(out), nil
}

// Import stores decoded events, keeping their ids so a re-import replaces
// rather than duplicates. Missing stamps are set to now.
func (s *Service) Import(ctx context.Context, events []models.Event) (int, error) {
	now := s.now()
	for i, ev := range events {
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = now
		}
		if ev.UpdatedAt.IsZero() {
			ev.UpdatedAt = now
		}
		s.canonical(&ev)
		if err := s.events.UpsertEvent(ctx, ev); err != nil {
			return i, err
		}
		s.pub.PublishChange(sse.EventCreated, s.change(ev))
	}
	return len(events), nil
}

func (s *Service) detail(ev models.Event) (*EventDetail, error) {
	sum, err := checksum.Of(ev)
	if err != nil {
		return nil, err
	}
	d := &EventDetail{Event: ev, Checksum: sum}
	if ev.Notes != "" {
		var buf bytes.Buffer
		if err := s.md.Convert([]byte(ev.Notes), &buf); err != nil {
			return nil, fmt.Errorf("eventservice: render notes: %w", err)
		}
		d.NotesHTML = buf.String()
	}
	return d, nil
}

// canonical puts ev in the form the store returns it in, so a checksum taken
// before a write matches one taken after a read, and refreshes the derived
// fields.
func (s *Service) canonical(ev *models.Event) {
	ev.Date = week.StartOfDay(ev.Date.In(s.loc))
	ev.CreatedAt = ev.CreatedAt.UTC()
	ev.UpdatedAt = ev.UpdatedAt.UTC()
	if ev.Repeat == "" {
		ev.Repeat = models.RepeatNone
	}
	ev.Recompute(s.codec)
}

func (s *Service) change(ev models.Event) sse.Change {
	return sse.Change{ID: ev.ID, Date: FormatDate(ev.Date)}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
