package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/weekplan/internal/apperr"
	"github.com/starford/weekplan/internal/models"
)

// ListIndicators returns all indicators in display order.
func (db *DB) ListIndicators(ctx context.Context) ([]models.Indicator, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, label, numerator, denominator, position
		FROM indicators
		ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list indicators: %w", err)
	}
	defer rows.Close()

	var out []models.Indicator
	for rows.Next() {
		var in models.Indicator
		if err := rows.Scan(&in.ID, &in.Label, &in.Numerator, &in.Denominator, &in.Position); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// GetIndicator returns the indicator with id or apperr.ErrNotFound.
func (db *DB) GetIndicator(ctx context.Context, id string) (models.Indicator, error) {
	var in models.Indicator
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, label, numerator, denominator, position FROM indicators WHERE id = ?`, id).
		Scan(&in.ID, &in.Label, &in.Numerator, &in.Denominator, &in.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Indicator{}, fmt.Errorf("store: indicator %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Indicator{}, fmt.Errorf("store: get indicator: %w", err)
	}
	return in, nil
}

// UpsertIndicator inserts or replaces an indicator.
func (db *DB) UpsertIndicator(ctx context.Context, in models.Indicator) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO indicators (id, label, numerator, denominator, position)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label       = excluded.label,
			numerator   = excluded.numerator,
			denominator = excluded.denominator,
			position    = excluded.position
	`, in.ID, in.Label, in.Numerator, in.Denominator, in.Position)
	if err != nil {
		return fmt.Errorf("store: upsert indicator: %w", err)
	}
	return nil
}

// DeleteIndicator removes an indicator.
func (db *DB) DeleteIndicator(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM indicators WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete indicator: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: indicator %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// CountIndicators returns the number of stored indicators.
func (db *DB) CountIndicators(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM indicators`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count indicators: %w", err)
	}
	return n, nil
}
