//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/weekplan/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS events_fts USING fts5(
			id UNINDEXED,
			title,
			notes,
			address,
			type,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, ev models.Event) error {
	_, _ = tx.Exec(`DELETE FROM events_fts WHERE id = ?`, ev.ID)
	_, err := tx.Exec(`INSERT INTO events_fts (id, title, notes, address, type) VALUES (?, ?, ?, ?, ?)`,
		ev.ID, ev.Title, ev.Notes, ev.Address, ev.Type)
	if err != nil {
		return fmt.Errorf("store: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM events_fts WHERE id = ?`, id)
}

// Search performs an FTS5 full-text search over event text.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT e.id,
		       e.title,
		       e.day,
		       e.start_time,
		       snippet(events_fts, 2, '<b>', '</b>', '...', 32)
		FROM events_fts
		JOIN events e ON e.id = events_fts.id
		WHERE events_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	return db.collectResults(rows)
}
