package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/spendline/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(_ *cobra.Command, _ []string) error {
		fmt.Println(config.Path())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data directory: %s\n", cfg.General.DataDir)
	fmt.Printf("    Backend:        %s\n", cfg.General.Backend)
	fmt.Printf("    Week start:     %s\n", cfg.WeekStart())
	fmt.Printf("    Lock timeout:   %s\n", cfg.LockTimeout())
	fmt.Println()

	fmt.Println("  [Retention]")
	fmt.Printf("    Hourly buckets:  %d days\n", cfg.Retention.HourlyDays)
	fmt.Printf("    Daily buckets:   %d days\n", cfg.Retention.DailyDays)
	fmt.Printf("    Weekly buckets:  %d days\n", cfg.Retention.WeeklyDays)
	fmt.Printf("    Idle sessions:   %d days\n", cfg.Retention.SessionDays)
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if config.Exists() {
		return fmt.Errorf("config already exists at %s", config.Path())
	}
	if err := config.Save(config.Default()); err != nil {
		return err
	}
	fmt.Printf("  Wrote %s\n", config.Path())
	return nil
}
