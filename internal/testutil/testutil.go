// Package testutil provides shared test helpers for databases and file roots.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/weekplan/internal/storage"
	"github.com/starford/weekplan/internal/store"
)

// TestDB creates a temporary SQLite store in loc that is closed on cleanup.
func TestDB(t *testing.T, loc *time.Location) *store.DB {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "weekplan-test.db"), loc)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestFiles creates a temporary directory wrapped in a storage provider.
func TestFiles(t *testing.T) *storage.FS {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return fs
}

// Clock is a settable time source.
type Clock struct {
	Now time.Time
}

// Func returns the clock as a func() time.Time.
func (c *Clock) Func() func() time.Time {
	return func() time.Time { return c.Now }
}
