package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/spendline/internal/cli"
)

var flagStatsFormat string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show historical counts, sums, and averages per window",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&flagStatsFormat, "format", "text", "Output format: text or json")
}

func runStats(_ *cobra.Command, _ []string) error {
	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := engine.Statistics(ctx)
	if err != nil {
		return err
	}

	switch flagStatsFormat {
	case "json":
		out, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case "text":
		fmt.Print(cli.RenderStatistics(stats))
	default:
		return fmt.Errorf("unknown format %q (want text or json)", flagStatsFormat)
	}
	return nil
}
