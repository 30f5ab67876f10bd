package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/spendline/internal/cli"
)

var flagGetFormat string

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Show current hour/day/week totals",
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringVar(&flagGetFormat, "format", "text", "Output format: text or json")
}

func runGet(_ *cobra.Command, _ []string) error {
	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	totals, err := engine.CurrentTotals(ctx)
	if err != nil {
		return err
	}

	switch flagGetFormat {
	case "json":
		out, err := json.Marshal(totals)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case "text":
		fmt.Print(cli.RenderTotals(totals))
	default:
		return fmt.Errorf("unknown format %q (want text or json)", flagGetFormat)
	}
	return nil
}
