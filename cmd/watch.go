package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/spendline/internal/tui"
)

var flagWatchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard of current totals and history",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&flagWatchInterval, "interval", 2*time.Second, "Refresh interval")
}

func runWatch(_ *cobra.Command, _ []string) error {
	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	p := tea.NewProgram(tui.New(engine, flagWatchInterval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch error: %w", err)
	}
	return nil
}
