package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.General.Backend != BackendFile {
		t.Errorf("Backend = %q, want %q", cfg.General.Backend, BackendFile)
	}
	if cfg.Retention.DailyDays != 30 {
		t.Errorf("DailyDays = %d, want 30", cfg.Retention.DailyDays)
	}
	if cfg.WeekStart() != time.Monday {
		t.Errorf("WeekStart = %v, want Monday", cfg.WeekStart())
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[general]
backend = "sqlite"
week_start = "sunday"
lock_timeout_ms = 250

[retention]
hourly_days = 7
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.General.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want sqlite", cfg.General.Backend)
	}
	if cfg.WeekStart() != time.Sunday {
		t.Errorf("WeekStart = %v, want Sunday", cfg.WeekStart())
	}
	if cfg.LockTimeout() != 250*time.Millisecond {
		t.Errorf("LockTimeout = %v, want 250ms", cfg.LockTimeout())
	}
	if cfg.Retention.HourlyDays != 7 {
		t.Errorf("HourlyDays = %d, want 7", cfg.Retention.HourlyDays)
	}
	// Unset fields keep their defaults.
	if cfg.Retention.WeeklyDays != 365 {
		t.Errorf("WeeklyDays = %d, want 365", cfg.Retention.WeeklyDays)
	}
}

func TestLoad_MalformedFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLockTimeout_GuardsZero(t *testing.T) {
	var cfg Config
	if cfg.LockTimeout() != 5*time.Second {
		t.Errorf("LockTimeout = %v, want 5s fallback", cfg.LockTimeout())
	}
}
