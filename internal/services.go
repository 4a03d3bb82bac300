package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/starford/weekplan/internal/backup"
	"github.com/starford/weekplan/internal/drag"
	"github.com/starford/weekplan/internal/eventservice"
	"github.com/starford/weekplan/internal/indicator"
	"github.com/starford/weekplan/internal/mcpserver"
	"github.com/starford/weekplan/internal/sse"
	"github.com/starford/weekplan/internal/storage"
	"github.com/starford/weekplan/internal/store"
)

// weekThrottle coalesces bursts of week-level change notifications.
const weekThrottle = 2 * time.Second

// services is the object graph shared by every command.
type services struct {
	cfg        *Config
	logger     *slog.Logger
	loc        *time.Location
	db         *store.DB
	broker     *sse.Broker
	events     *eventservice.Service
	indicators *indicator.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) newLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// openServices opens the database and builds the calendar services on top
// of it. The caller owns Close.
func openServices(ctx context.Context, cfg *Config, logger *slog.Logger) (*services, error) {
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.SQLite.Path, loc)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	indicators := indicator.New(db)
	seeded, err := indicators.Seed(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("seed indicators: %w", err)
	}
	if seeded {
		logger.Info("default indicators created")
	}

	broker := sse.NewBroker(weekThrottle)
	events := eventservice.New(db,
		eventservice.WithPublisher(broker),
		eventservice.WithSettings(db),
		eventservice.WithLocation(loc),
		eventservice.WithLogger(logger),
		eventservice.WithDragOptions(drag.WithTimeout(cfg.Drag.Timeout)),
	)
	if err := events.RestoreSelected(ctx); err != nil {
		logger.Warn("restore selected date failed", slog.String("error", err.Error()))
	}

	return &services{
		cfg:        cfg,
		logger:     logger,
		loc:        loc,
		db:         db,
		broker:     broker,
		events:     events,
		indicators: indicators,
	}, nil
}

func (s *services) Close() error {
	s.broker.Close()
	return s.db.Close()
}

// RunMCP serves the calendar tools over stdio until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.newLogger()

	svc, err := openServices(ctx, app.config, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	logger.Info("MCP server starting on stdio", slog.String("sqlite_path", app.config.SQLite.Path))
	return mcpserver.New(svc.events, svc.indicators).ServeStdio()
}

// Export writes every event flagged for backup to an iCalendar file and
// returns the number of events written. An empty out uses the configured
// backup directory and file name.
func Export(ctx context.Context, out string, opts ...Option) (int, error) {
	app, err := newApplication(opts)
	if err != nil {
		return 0, err
	}
	logger := app.newLogger()

	svc, err := openServices(ctx, app.config, logger)
	if err != nil {
		return 0, err
	}
	defer svc.Close()

	dir, name := app.config.Backup.Dir, backup.DefaultFile
	if out != "" {
		dir, name = filepath.Split(out)
		if dir == "" {
			dir = "."
		}
	}
	files, err := storage.NewFS(dir)
	if err != nil {
		return 0, fmt.Errorf("init export dir: %w", err)
	}

	job := backup.New(svc.db, files, svc.loc, logger, backup.WithFile(name))
	n, err := job.RunOnce(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info("export written",
		slog.String("dir", files.Root()),
		slog.String("file", job.File()),
		slog.Int("events", n))
	return n, nil
}
