// Package backup periodically exports events flagged for backup to an
// iCalendar file.
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/starford/weekplan/internal/ics"
	"github.com/starford/weekplan/internal/models"
	"github.com/starford/weekplan/internal/storage"
)

// DefaultFile is the export file name inside the backup directory.
const DefaultFile = "events-backup.ics"

// Source yields the events to back up.
type Source interface {
	BackupEvents(ctx context.Context) ([]models.Event, error)
}

// Job writes a backup file on demand or on a cron schedule.
type Job struct {
	src    Source
	files  storage.Provider
	loc    *time.Location
	file   string
	logger *slog.Logger
}

// Option configures a Job.
type Option func(*Job)

// WithFile overrides the export file name inside files.
func WithFile(name string) Option {
	return func(j *Job) { j.file = name }
}

// New creates a backup job writing DefaultFile into files.
func New(src Source, files storage.Provider, loc *time.Location, logger *slog.Logger, opts ...Option) *Job {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	j := &Job{src: src, files: files, loc: loc, file: DefaultFile, logger: logger}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// File returns the export file name.
func (j *Job) File() string {
	return j.file
}

// RunOnce exports the backup and returns the number of events written.
func (j *Job) RunOnce(ctx context.Context) (int, error) {
	events, err := j.src.BackupEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("backup: load events: %w", err)
	}
	if err := j.files.Write(j.file, ics.Encode(events, j.loc)); err != nil {
		return 0, fmt.Errorf("backup: write: %w", err)
	}
	return len(events), nil
}

// Run schedules RunOnce with a standard five-field cron spec and blocks
// until ctx is cancelled. Jobs still running at shutdown are awaited.
func (j *Job) Run(ctx context.Context, spec string) error {
	c := cron.New(cron.WithLocation(j.loc))
	_, err := c.AddFunc(spec, func() {
		n, err := j.RunOnce(ctx)
		if err != nil {
			j.logger.Error("backup failed", slog.String("error", err.Error()))
			return
		}
		j.logger.Info("backup written", slog.String("file", j.file), slog.Int("events", n))
	})
	if err != nil {
		return fmt.Errorf("backup: schedule %q: %w", spec, err)
	}

	c.Start()
	j.logger.Info("backup scheduled", slog.String("schedule", spec))
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
