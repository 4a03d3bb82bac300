package store

import (
	"context"
	"time"

	"github.com/starford/weekplan/internal/models"
)

// EventStore defines event persistence. Consumers depend on this interface
// rather than *DB.
type EventStore interface {
	UpsertEvent(ctx context.Context, ev models.Event) error
	GetEvent(ctx context.Context, id string) (models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, from, to time.Time) ([]models.Event, error)
	BackupEvents(ctx context.Context) ([]models.Event, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// IndicatorStore defines indicator persistence.
type IndicatorStore interface {
	ListIndicators(ctx context.Context) ([]models.Indicator, error)
	GetIndicator(ctx context.Context, id string) (models.Indicator, error)
	UpsertIndicator(ctx context.Context, in models.Indicator) error
	DeleteIndicator(ctx context.Context, id string) error
	CountIndicators(ctx context.Context) (int, error)
}

// SettingsStore keeps small UI state such as the selected day.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

var (
	_ EventStore     = (*DB)(nil)
	_ IndicatorStore = (*DB)(nil)
	_ SettingsStore  = (*DB)(nil)
)
