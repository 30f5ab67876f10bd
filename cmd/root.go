// Package cmd implements the spendline CLI commands.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/theirongolddev/spendline/internal/config"
	"github.com/theirongolddev/spendline/internal/pipeline"
	"github.com/theirongolddev/spendline/internal/store"
)

var (
	flagDataDir string
	flagConfig  string
	flagBackend string
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "spendline",
	Short: "Session cost telemetry for your shell status line",
	Long: "Track agent session spend across rolling hour/day/week windows.\n" +
		"Wire `spendline add-session` into your statusline hook and query\n" +
		"the totals with `get`, `stats`, or `watch`.",
	RunE:          runGet,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go. Failures exit
// non-zero with a single line on stderr so a broken invocation degrades
// to a prompt render with no cost info, never a hung terminal.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "spendline: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Storage directory (default XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Storage backend: file or sqlite")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress warnings")
}

// loadConfig merges the config file with flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDataDir != "" {
		cfg.General.DataDir = flagDataDir
	}
	if flagBackend != "" {
		cfg.General.Backend = flagBackend
	}
	if cfg.General.DataDir == "" {
		cfg.General.DataDir = config.DefaultDataDir()
	}
	return cfg, nil
}

func newLogger() *zap.Logger {
	if flagQuiet {
		return zap.NewNop()
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = "" // warnings on a prompt render don't need timestamps
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.Lock(os.Stderr),
		zapcore.WarnLevel,
	)
	return zap.New(core)
}

func openStore(cfg config.Config, log *zap.Logger) (store.TransactionalStore, error) {
	switch cfg.General.Backend {
	case config.BackendSQLite:
		return store.OpenSQLite(filepath.Join(cfg.General.DataDir, "spendline.db"), store.SQLiteOptions{
			LockTimeout: cfg.LockTimeout(),
			Logger:      log,
		})
	case config.BackendFile, "":
		return store.NewFileStore(cfg.General.DataDir, store.FileStoreOptions{
			LockTimeout: cfg.LockTimeout(),
			Logger:      log,
		})
	default:
		return nil, fmt.Errorf("unknown backend %q (want file or sqlite)", cfg.General.Backend)
	}
}

// newEngine builds the per-invocation engine. The returned cleanup must
// run before exit.
func newEngine() (*pipeline.Engine, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	log := newLogger()
	st, err := openStore(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	engine := pipeline.New(pipeline.OptionsFromConfig(st, cfg, log))
	cleanup := func() {
		_ = st.Close()
		_ = log.Sync()
	}
	return engine, cleanup, nil
}
