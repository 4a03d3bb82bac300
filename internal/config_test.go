package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/weekplan/pkg/config"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port zero", func(c *Config) { c.App.HTTP.Port = 0 }, "app"},
		{"port too large", func(c *Config) { c.App.HTTP.Port = 70000 }, "app"},
		{"bad timezone", func(c *Config) { c.App.Timezone = "Mars/Olympus" }, "unknown timezone"},
		{"no sqlite path", func(c *Config) { c.SQLite.Path = "" }, "sqlite"},
		{"drag timeout", func(c *Config) { c.Drag.Timeout = 0 }, "drag"},
		{"reap interval", func(c *Config) { c.Drag.ReapInterval = time.Millisecond }, "drag"},
		{"bad cron", func(c *Config) { c.Backup.Schedule = "every day" }, "cron"},
		{"backup dir", func(c *Config) { c.Backup.Dir = "" }, "backup"},
		{"inbox dir", func(c *Config) { c.Inbox.Enabled = true; c.Inbox.Dir = "" }, "inbox"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestBackupConfig_DisabledSkipsChecks(t *testing.T) {
	cfg := BackupConfig{Enabled: false, Schedule: "nonsense"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled backup should pass: %v", err)
	}
}

func TestBackupConfig_Descriptor(t *testing.T) {
	cfg := BackupConfig{Enabled: true, Schedule: "@daily", Dir: "b"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("@daily should be accepted: %v", err)
	}
}

func TestApplicationConfig_Location(t *testing.T) {
	for _, tz := range []string{"", "Local"} {
		c := ApplicationConfig{Timezone: tz}
		loc, err := c.Location()
		if err != nil || loc != time.Local {
			t.Errorf("%q: loc=%v err=%v", tz, loc, err)
		}
	}
	c := ApplicationConfig{Timezone: "UTC"}
	if loc, err := c.Location(); err != nil || loc.String() != "UTC" {
		t.Errorf("UTC: loc=%v err=%v", loc, err)
	}
}

func TestHTTPConfig_Address(t *testing.T) {
	c := HTTPConfig{Port: 9090}
	if got := c.Address(); got != ":9090" {
		t.Errorf("Address() = %q", got)
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	t.Setenv("WEEKPLAN_DB", "/tmp/wp.db")
	body := `app:
  log_level: debug
  http:
    port: 9000
  timezone: UTC
sqlite:
  path: ${WEEKPLAN_DB}
drag:
  timeout: 10s
backup:
  enabled: false
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Port != 9000 {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.SQLite.Path != "/tmp/wp.db" {
		t.Errorf("sqlite path = %q", cfg.SQLite.Path)
	}
	if cfg.Drag.Timeout != 10*time.Second || cfg.Drag.ReapInterval != time.Second {
		t.Errorf("drag = %+v", cfg.Drag)
	}
	if cfg.Backup.Enabled || cfg.Backup.Schedule != "0 3 * * *" {
		t.Errorf("backup = %+v", cfg.Backup)
	}
}
