// Package config loads spendline configuration from a TOML file with
// XDG-compliant defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Backend names accepted by general.backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds all spendline configuration. It is constructed once per
// invocation and passed down; there are no package-level mutable
// singletons.
type Config struct {
	General   GeneralConfig   `toml:"general"`
	Retention RetentionConfig `toml:"retention"`
}

// GeneralConfig holds storage and bucketing preferences.
type GeneralConfig struct {
	DataDir       string `toml:"data_dir,omitempty"`
	Backend       string `toml:"backend"`
	WeekStart     string `toml:"week_start"`
	LockTimeoutMS int    `toml:"lock_timeout_ms"`
}

// RetentionConfig holds per-collection retention windows in days.
// A bucket older than its window is pruned on the next write to its
// collection; a session idle longer than session_days is dropped.
type RetentionConfig struct {
	HourlyDays  int `toml:"hourly_days"`
	DailyDays   int `toml:"daily_days"`
	WeeklyDays  int `toml:"weekly_days"`
	SessionDays int `toml:"session_days"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		General: GeneralConfig{
			Backend:       BackendFile,
			WeekStart:     "monday",
			LockTimeoutMS: 5000,
		},
		Retention: RetentionConfig{
			HourlyDays:  30,
			DailyDays:   30,
			WeeklyDays:  365,
			SessionDays: 30,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "spendline")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "spendline")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DefaultDataDir returns the XDG-compliant data directory used when
// neither the config file nor --data-dir names one.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "spendline")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "spendline")
}

// Load reads the config file at path, returning defaults if it doesn't
// exist. An empty path means the standard location.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the standard location.
func Save(cfg Config) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return toml.NewEncoder(f).Encode(cfg)
}

// Exists returns true if a config file exists at the standard location.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// LockTimeout returns the configured lock wait as a duration.
func (c Config) LockTimeout() time.Duration {
	if c.General.LockTimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.General.LockTimeoutMS) * time.Millisecond
}

// WeekStart maps the configured week start to a weekday. Anything other
// than "sunday" means Monday, the ISO convention.
func (c Config) WeekStart() time.Weekday {
	if c.General.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}
