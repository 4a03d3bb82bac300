// Package store persists events, indicators and UI settings in SQLite with
// optional FTS5 full-text search over event text.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL DEFAULT '',
	color       TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	notes       TEXT NOT NULL DEFAULT '',
	address     TEXT NOT NULL DEFAULT '',
	day         TEXT NOT NULL,
	start_time  TEXT NOT NULL DEFAULT '',
	end_time    TEXT NOT NULL DEFAULT '',
	start_hour  INTEGER NOT NULL DEFAULT 0,
	duration    REAL NOT NULL DEFAULT 0,
	repeat_rule TEXT NOT NULL DEFAULT 'Does not repeat',
	backup      INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);
CREATE INDEX IF NOT EXISTS idx_events_repeat ON events(repeat_rule);

CREATE TABLE IF NOT EXISTS indicators (
	id          TEXT PRIMARY KEY,
	label       TEXT NOT NULL DEFAULT '',
	numerator   INTEGER NOT NULL DEFAULT 0,
	denominator INTEGER NOT NULL DEFAULT 1,
	position    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);
`

const (
	dayLayout   = "2006-01-02"
	stampLayout = time.RFC3339Nano
)

// DB wraps a sql.DB with event and indicator operations.
type DB struct {
	conn *sql.DB
	loc  *time.Location
}

// Open opens (or creates) the SQLite database and applies the schema.
// Calendar days are materialised in loc; nil means time.Local.
func Open(dsn string, loc *time.Location) (*DB, error) {
	if loc == nil {
		loc = time.Local
	}
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn, loc: loc}, nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) formatDay(t time.Time) string {
	return t.In(db.loc).Format(dayLayout)
}

func (db *DB) parseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, db.loc)
}
