package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/weekplan/internal/apperr"
	"github.com/starford/weekplan/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	Snippet   string    `json:"snippet"`
}

const eventColumns = `id, type, color, title, notes, address, day, start_time, end_time,
	start_hour, duration, repeat_rule, backup, created_at, updated_at`

// UpsertEvent inserts or replaces an event and its FTS entry in one transaction.
func (db *DB) UpsertEvent(ctx context.Context, ev models.Event) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	repeat := ev.Repeat
	if repeat == "" {
		repeat = models.RepeatNone
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type        = excluded.type,
			color       = excluded.color,
			title       = excluded.title,
			notes       = excluded.notes,
			address     = excluded.address,
			day         = excluded.day,
			start_time  = excluded.start_time,
			end_time    = excluded.end_time,
			start_hour  = excluded.start_hour,
			duration    = excluded.duration,
			repeat_rule = excluded.repeat_rule,
			backup      = excluded.backup,
			created_at  = excluded.created_at,
			updated_at  = excluded.updated_at
	`, ev.ID, ev.Type, ev.Color, ev.Title, ev.Notes, ev.Address, db.formatDay(ev.Date),
		ev.StartTime, ev.EndTime, ev.Time, ev.Duration, string(repeat), ev.Backup,
		ev.CreatedAt.UTC().Format(stampLayout), ev.UpdatedAt.UTC().Format(stampLayout))
	if err != nil {
		return fmt.Errorf("store: upsert event: %w", err)
	}

	if err := ftsUpsert(tx, ev); err != nil {
		return err
	}
	return tx.Commit()
}

// GetEvent returns the event with id or apperr.ErrNotFound.
func (db *DB) GetEvent(ctx context.Context, id string) (models.Event, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	ev, err := db.scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, fmt.Errorf("store: event %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("store: get event: %w", err)
	}
	return ev, nil
}

// DeleteEvent removes an event and its FTS entry.
func (db *DB) DeleteEvent(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: event %s: %w", id, apperr.ErrNotFound)
	}
	ftsDelete(tx, id)
	return tx.Commit()
}

// ListEvents returns one-off events dated in [from, to) plus every recurring
// event whose first occurrence is before to. Callers expand recurrences.
func (db *DB) ListEvents(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE (repeat_rule = ? AND day >= ? AND day < ?)
		   OR (repeat_rule <> ? AND day < ?)
		ORDER BY day, start_hour, id
	`, string(models.RepeatNone), db.formatDay(from), db.formatDay(to),
		string(models.RepeatNone), db.formatDay(to))
	if err != nil {
		return nil, fmt.Errorf("store: list events: %w", err)
	}
	return db.collectEvents(rows)
}

// BackupEvents returns every event flagged for backup.
func (db *DB) BackupEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events WHERE backup = 1 ORDER BY day, start_hour, id`)
	if err != nil {
		return nil, fmt.Errorf("store: backup events: %w", err)
	}
	return db.collectEvents(rows)
}

func (db *DB) collectEvents(rows *sql.Rows) ([]models.Event, error) {
	defer rows.Close()
	var out []models.Event
	for rows.Next() {
		ev, err := db.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (db *DB) scanEvent(s scanner) (models.Event, error) {
	var (
		ev                   models.Event
		day, repeat          string
		createdAt, updatedAt string
	)
	err := s.Scan(&ev.ID, &ev.Type, &ev.Color, &ev.Title, &ev.Notes, &ev.Address, &day,
		&ev.StartTime, &ev.EndTime, &ev.Time, &ev.Duration, &repeat, &ev.Backup,
		&createdAt, &updatedAt)
	if err != nil {
		return models.Event{}, err
	}
	ev.Repeat = models.Repeat(repeat)
	if ev.Date, err = db.parseDay(day); err != nil {
		return models.Event{}, fmt.Errorf("store: parse day %q: %w", day, err)
	}
	if ev.CreatedAt, err = time.Parse(stampLayout, createdAt); err != nil {
		return models.Event{}, fmt.Errorf("store: parse created_at: %w", err)
	}
	if ev.UpdatedAt, err = time.Parse(stampLayout, updatedAt); err != nil {
		return models.Event{}, fmt.Errorf("store: parse updated_at: %w", err)
	}
	return ev, nil
}
