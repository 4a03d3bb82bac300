package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Drag   DragConfig        `yaml:"drag"`
	Backup BackupConfig      `yaml:"backup"`
	Inbox  InboxConfig       `yaml:"inbox"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if err := c.Drag.Validate(); err != nil {
		return fmt.Errorf("drag: %w", err)
	}
	if err := c.Backup.Validate(); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	if err := c.Inbox.Validate(); err != nil {
		return fmt.Errorf("inbox: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	// Timezone is an IANA zone name. Empty or "Local" uses the host zone.
	Timezone string `yaml:"timezone"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Timezone, validation.By(func(any) error {
			_, err := c.Location()
			return err
		})),
	)
}

// Location resolves Timezone.
func (c *ApplicationConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", c.Timezone)
	}
	return loc, nil
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// DragConfig controls the drag engine.
//
// Timeout cancels a drag whose pointer has been idle that long, as when the
// window loses focus mid-drag. ReapInterval is how often that is checked.
type DragConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	ReapInterval time.Duration `yaml:"reap_interval"`
}

// Validate validates the drag configuration.
func (c *DragConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.ReapInterval, validation.Required, validation.Min(100*time.Millisecond)),
	)
}

// BackupConfig holds the scheduled iCalendar backup.
type BackupConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
	Dir      string `yaml:"dir"`
}

// Validate validates the backup configuration. Schedule and Dir are only
// checked when the backup is enabled.
func (c *BackupConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Schedule, validation.When(c.Enabled, validation.Required, validation.By(cronSpec))),
		validation.Field(&c.Dir, validation.When(c.Enabled, validation.Required)),
	)
}

func cronSpec(v any) error {
	s, _ := v.(string)
	if _, err := cron.ParseStandard(s); err != nil {
		return errors.New("must be a five-field cron expression or descriptor")
	}
	return nil
}

// InboxConfig holds the watched import directory.
type InboxConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Validate validates the inbox configuration.
func (c *InboxConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.When(c.Enabled, validation.Required)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			Timezone: "Local",
		},
		SQLite: SQLiteConfig{
			Path: "./weekplan.db",
		},
		Drag: DragConfig{
			Timeout:      30 * time.Second,
			ReapInterval: time.Second,
		},
		Backup: BackupConfig{
			Enabled:  true,
			Schedule: "0 3 * * *",
			Dir:      "./backups",
		},
		Inbox: InboxConfig{
			Enabled: false,
			Dir:     "./inbox",
		},
	}
}
