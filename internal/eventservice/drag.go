package eventservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/weekplan/internal/apperr"
	"github.com/starford/weekplan/internal/drag"
	"github.com/starford/weekplan/internal/sse"
)

// BeginDrag starts dragging the stored event id from p. Any pending undo is
// discarded.
func (s *Service) BeginDrag(ctx context.Context, id string, p drag.Point) (drag.Session, error) {
	ev, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return drag.Session{}, err
	}
	if err := s.engine.Begin(ev, p); err != nil {
		return drag.Session{}, fmt.Errorf("%w: %w", apperr.ErrConflict, err)
	}
	sess, _ := s.engine.Session()
	return sess, nil
}

// MoveDrag records a pointer move. Views are told when the displayed day
// changes. A move with no drag in progress changes nothing.
func (s *Service) MoveDrag(ctx context.Context, p drag.Point, vp drag.Viewport) (drag.MoveResult, error) {
	res, err := s.engine.Move(p, vp)
	if errors.Is(err, drag.ErrNoActiveDrag) {
		return drag.MoveResult{Selected: s.engine.Selected()}, nil
	}
	if err != nil {
		return drag.MoveResult{}, fmt.Errorf("%w: %w", apperr.ErrConflict, err)
	}
	if res.DayShift != 0 {
		s.selectionChanged(ctx)
	}
	return res, nil
}

// EndDrag releases the pointer at p. A committed move is persisted and an
// undo is offered; a tap writes nothing. A release with no drag in
// progress reports OutcomeNone.
func (s *Service) EndDrag(ctx context.Context, p drag.Point) (drag.Outcome, error) {
	out, err := s.engine.Release(p)
	if errors.Is(err, drag.ErrNoActiveDrag) {
		return drag.Outcome{Kind: drag.OutcomeNone}, nil
	}
	if err != nil {
		return drag.Outcome{}, fmt.Errorf("%w: %w", apperr.ErrConflict, err)
	}
	if out.Kind != drag.OutcomeCommitted {
		return out, nil
	}

	s.canonical(&out.Event)
	if err := s.events.UpsertEvent(ctx, out.Event); err != nil {
		return drag.Outcome{}, err
	}
	s.pub.PublishChange(sse.EventMoved, s.change(out.Event))
	if out.Undo != nil {
		s.pub.Publish(sse.Event{Type: sse.UndoAvailable, Data: out.Undo})
	}
	if !out.Event.Date.Equal(out.Previous.Date) {
		s.selectionChanged(ctx)
	}
	return out, nil
}

// CancelDrag abandons the active drag and restores the day it began on.
func (s *Service) CancelDrag(ctx context.Context) (drag.Session, error) {
	sess, err := s.engine.Cancel()
	if err != nil {
		return drag.Session{}, fmt.Errorf("%w: %w", apperr.ErrConflict, err)
	}
	if sess.DayShift != 0 {
		s.selectionChanged(ctx)
	}
	return sess, nil
}

// DragSession returns the active drag, if any.
func (s *Service) DragSession() (drag.Session, bool) {
	return s.engine.Session()
}

// PendingUndo returns the current undo offer, if any.
func (s *Service) PendingUndo() (drag.UndoTicket, bool) {
	return s.engine.PendingUndo()
}

// Undo reverts the most recent committed drag by writing back the exact
// pre-drag snapshot.
func (s *Service) Undo(ctx context.Context) (*EventDetail, error) {
	snap, err := s.engine.Undo()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	}
	if err := s.events.UpsertEvent(ctx, snap); err != nil {
		return nil, err
	}
	s.pub.PublishChange(sse.EventUpdated, s.change(snap))
	s.pub.Publish(sse.Event{Type: sse.UndoApplied, Data: s.change(snap)})
	return s.detail(snap)
}

// ReapDrags cancels a drag whose pointer has been idle past the engine
// timeout, as when the window loses focus mid-drag.
func (s *Service) ReapDrags(ctx context.Context, now time.Time) bool {
	sess, ok := s.engine.Reap(now)
	if !ok {
		return false
	}
	s.logger.Info("stale drag cancelled",
		slog.String("event_id", sess.Snapshot.ID),
		slog.Time("last_seen", sess.LastSeen))
	if sess.DayShift != 0 {
		s.selectionChanged(ctx)
	}
	return true
}

func (s *Service) undoExpired(t drag.UndoTicket) {
	s.pub.Publish(sse.Event{Type: sse.UndoExpired, Data: t})
}
