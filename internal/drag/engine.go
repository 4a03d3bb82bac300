// Package drag implements drag-to-reschedule for calendar events.
//
// The Engine is a small state machine: Idle -> Dragging -> Committed or
// Cancelled. An in-progress drag is an explicit *Session; the engine is idle
// when the session is nil. A committed drag leaves a single-level undo that
// expires after UndoWindow.
package drag

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/starford/weekplan/internal/clock"
	"github.com/starford/weekplan/internal/geometry"
	"github.com/starford/weekplan/internal/models"
	"github.com/starford/weekplan/internal/week"
)

const (
	// UndoWindow is how long a committed move can be reverted.
	UndoWindow = 5 * time.Second
	// EdgeScrollPx is the distance from the top/bottom edge that triggers autoscroll.
	EdgeScrollPx = 100
	// ScrollStepPx is the autoscroll amount per pointer move.
	ScrollStepPx = 10
	// EdgeDayPx is the distance from the left/right edge that switches day.
	EdgeDayPx = 96
	// DefaultTimeout cancels a drag that has seen no pointer activity.
	DefaultTimeout = 30 * time.Second
)

var (
	ErrDragInProgress = errors.New("drag already in progress")
	ErrNoActiveDrag   = errors.New("no active drag")
	ErrNothingToUndo  = errors.New("nothing to undo")
)

// State is the engine's interaction state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Point is a pointer position in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the visible area the pointer moves in. A zero dimension
// disables the edge checks that depend on it.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Session is an in-progress drag.
type Session struct {
	Snapshot      models.Event `json:"snapshot"`
	Start         Point        `json:"start"`
	Current       Point        `json:"current"`
	StartSelected time.Time    `json:"start_selected"`
	DayShift      int          `json:"day_shift"`
	StartedAt     time.Time    `json:"started_at"`
	LastSeen      time.Time    `json:"last_seen"`
}

// OffsetY is the live vertical offset applied when rendering the dragged event.
func (s *Session) OffsetY() float64 {
	return s.Current.Y - s.Start.Y
}

// MoveResult tells the view how to react to a pointer move.
type MoveResult struct {
	OffsetY  float64      `json:"offset_y"`
	ScrollBy float64      `json:"scroll_by"`
	DayShift int          `json:"day_shift"`
	Selected time.Time    `json:"selected"`
	Box      geometry.Box `json:"box"`
}

// OutcomeKind distinguishes a tap from a committed move.
type OutcomeKind string

const (
	OutcomeTap       OutcomeKind = "tap"
	OutcomeCommitted OutcomeKind = "committed"
	// OutcomeNone is a release that arrived with no drag in progress.
	OutcomeNone OutcomeKind = "none"
)

// Outcome is the result of releasing the pointer.
type Outcome struct {
	Kind     OutcomeKind  `json:"kind"`
	Event    models.Event `json:"event"`
	Previous models.Event `json:"previous"`
	Undo     *UndoTicket  `json:"undo,omitempty"`
}

// UndoTicket describes the pending undo affordance.
type UndoTicket struct {
	EventID   string    `json:"event_id"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Timer is the subset of *time.Timer the engine needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

type pendingUndo struct {
	ticket   UndoTicket
	snapshot models.Event
	timer    Timer
	seq      uint64
}

// Engine tracks at most one drag and one pending undo.
type Engine struct {
	mu        sync.Mutex
	codec     clock.Codec
	now       func() time.Time
	afterFunc AfterFunc
	onExpire  func(UndoTicket)
	timeout   time.Duration

	selected time.Time
	session  *Session
	undo     *pendingUndo
	seq      uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithCodec sets the clock codec.
func WithCodec(c clock.Codec) Option {
	return func(e *Engine) { e.codec = c }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithAfterFunc replaces time.AfterFunc for the undo timer.
func WithAfterFunc(f AfterFunc) Option {
	return func(e *Engine) { e.afterFunc = f }
}

// WithOnExpire registers a callback invoked when a pending undo is discarded
// without being applied: timer expiry, a new drag, or deletion of the event.
func WithOnExpire(f func(UndoTicket)) Option {
	return func(e *Engine) { e.onExpire = f }
}

// WithTimeout sets the inactivity timeout used by Reap.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// New creates an idle engine with selected as the displayed day.
func New(selected time.Time, opts ...Option) *Engine {
	e := &Engine{
		codec:     clock.Default,
		now:       time.Now,
		afterFunc: func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) },
		timeout:   DefaultTimeout,
		selected:  week.StartOfDay(selected),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State reports whether a drag is active.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		return Dragging
	}
	return Idle
}

// Session returns a copy of the active session.
func (e *Engine) Session() (Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return Session{}, false
	}
	return *e.session, true
}

// Selected returns the displayed day.
func (e *Engine) Selected() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// Select changes the displayed day.
func (e *Engine) Select(date time.Time) {
	e.mu.Lock()
	e.selected = week.StartOfDay(date)
	e.mu.Unlock()
}

// PendingUndo returns the current undo ticket, if any.
func (e *Engine) PendingUndo() (UndoTicket, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.undo == nil {
		return UndoTicket{}, false
	}
	return e.undo.ticket, true
}

// Begin starts dragging ev from p. Any pending undo is discarded. A second
// Begin while a drag is active is rejected and leaves the session unchanged.
func (e *Engine) Begin(ev models.Event, p Point) error {
	e.mu.Lock()
	if e.session != nil {
		e.mu.Unlock()
		return ErrDragInProgress
	}
	now := e.now()
	e.session = &Session{
		Snapshot:      ev,
		Start:         p,
		Current:       p,
		StartSelected: e.selected,
		StartedAt:     now,
		LastSeen:      now,
	}
	dropped := e.clearUndoLocked()
	e.mu.Unlock()

	e.notifyExpired(dropped)
	return nil
}

// Move records a pointer move. Near the top or bottom edge it asks the view
// to scroll; near the left or right edge it switches the displayed day.
func (e *Engine) Move(p Point, vp Viewport) (MoveResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.session
	if s == nil {
		return MoveResult{}, ErrNoActiveDrag
	}
	s.Current = p
	s.LastSeen = e.now()

	var res MoveResult
	switch {
	case vp.Height > 0 && p.Y > vp.Height-EdgeScrollPx:
		res.ScrollBy = ScrollStepPx
	case p.Y < EdgeScrollPx:
		res.ScrollBy = -ScrollStepPx
	}

	switch {
	case p.X < EdgeDayPx:
		e.selected = week.ShiftDays(e.selected, -1)
		s.DayShift--
		res.DayShift = -1
	case vp.Width > 0 && p.X > vp.Width-EdgeDayPx:
		e.selected = week.ShiftDays(e.selected, 1)
		s.DayShift++
		res.DayShift = 1
	}

	res.OffsetY = s.OffsetY()
	res.Selected = e.selected
	res.Box = geometry.Layout(s.Snapshot, res.OffsetY)
	return res, nil
}

// Release ends the drag at p. Without net movement the release is a tap and
// nothing is written. Otherwise the event is rescheduled onto the selected
// day and a new undo is armed.
func (e *Engine) Release(p Point) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.session
	if s == nil {
		return Outcome{}, ErrNoActiveDrag
	}
	e.session = nil

	if p == s.Start && s.DayShift == 0 {
		return Outcome{Kind: OutcomeTap, Event: s.Snapshot, Previous: s.Snapshot}, nil
	}

	now := e.now()
	minutes := MinutesForDelta(p.Y - s.Start.Y)
	updated := Reschedule(e.codec, s.Snapshot, minutes, e.selected, now)

	e.seq++
	seq := e.seq
	ticket := UndoTicket{
		EventID:   updated.ID,
		Message:   fmt.Sprintf("Moved to %s, %s", clock.FormatHeaderDate(e.selected), updated.StartTime),
		ExpiresAt: now.Add(UndoWindow),
	}
	e.undo = &pendingUndo{
		ticket:   ticket,
		snapshot: s.Snapshot,
		seq:      seq,
		timer:    e.afterFunc(UndoWindow, func() { e.expire(seq) }),
	}

	return Outcome{Kind: OutcomeCommitted, Event: updated, Previous: s.Snapshot, Undo: &ticket}, nil
}

// Cancel abandons the active drag without writing anything and restores the
// day that was displayed when the drag began.
func (e *Engine) Cancel() (Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return Session{}, ErrNoActiveDrag
	}
	return e.cancelLocked(), nil
}

// Reap cancels the active drag if it has seen no pointer activity for longer
// than the configured timeout.
func (e *Engine) Reap(now time.Time) (Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.session
	if s == nil || e.timeout <= 0 || now.Sub(s.LastSeen) <= e.timeout {
		return Session{}, false
	}
	return e.cancelLocked(), true
}

func (e *Engine) cancelLocked() Session {
	s := e.session
	e.session = nil
	e.selected = s.StartSelected
	return *s
}

// Undo returns the pre-drag snapshot of the most recent committed move and
// clears the undo. The caller overwrites the stored event with it. An undo
// found past its window is discarded as if its timer had fired.
func (e *Engine) Undo() (models.Event, error) {
	e.mu.Lock()
	u := e.undo
	if u == nil {
		e.mu.Unlock()
		return models.Event{}, ErrNothingToUndo
	}
	e.undo = nil
	if u.timer != nil {
		u.timer.Stop()
	}
	expired := !e.now().Before(u.ticket.ExpiresAt)
	e.mu.Unlock()

	if expired {
		e.notifyExpired(&u.ticket)
		return models.Event{}, ErrNothingToUndo
	}
	return u.snapshot, nil
}

// Discard drops the pending undo if it belongs to eventID, as when that
// event is deleted. It reports whether an undo was dropped.
func (e *Engine) Discard(eventID string) bool {
	e.mu.Lock()
	if e.undo == nil || e.undo.ticket.EventID != eventID {
		e.mu.Unlock()
		return false
	}
	dropped := e.clearUndoLocked()
	e.mu.Unlock()

	e.notifyExpired(dropped)
	return true
}

func (e *Engine) expire(seq uint64) {
	e.mu.Lock()
	u := e.undo
	if u == nil || u.seq != seq {
		e.mu.Unlock()
		return
	}
	e.undo = nil
	e.mu.Unlock()

	e.notifyExpired(&u.ticket)
}

func (e *Engine) clearUndoLocked() *UndoTicket {
	u := e.undo
	if u == nil {
		return nil
	}
	e.undo = nil
	if u.timer != nil {
		u.timer.Stop()
	}
	return &u.ticket
}

func (e *Engine) notifyExpired(t *UndoTicket) {
	if t != nil && e.onExpire != nil {
		e.onExpire(*t)
	}
}
