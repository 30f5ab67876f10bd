package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/spendline/internal/pipeline"
)

var flagResetConfirm bool

var resetCmd = &cobra.Command{
	Use:   "reset [all|hourly|daily|weekly|sessions]",
	Short: "Clear persisted spend history",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVarP(&flagResetConfirm, "confirm", "f", false, "Skip the interactive confirmation")
}

func runReset(_ *cobra.Command, args []string) error {
	scope := pipeline.ScopeAll
	if len(args) == 1 {
		var err error
		scope, err = pipeline.ParseScope(args[0])
		if err != nil {
			return err
		}
	}

	if !flagResetConfirm {
		if !isatty.IsTerminal(os.Stdin.Fd()) {
			return errors.New("refusing to reset without --confirm")
		}
		var ok bool
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Clear %s spend history?", scope)).
				Description("This cannot be undone.").
				Value(&ok),
		))
		if err := form.Run(); err != nil {
			return err
		}
		if !ok {
			fmt.Println("  Aborted.")
			return nil
		}
	}

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := engine.Reset(ctx, scope); err != nil {
		return err
	}
	fmt.Printf("  Cleared %s.\n", scope)
	return nil
}
