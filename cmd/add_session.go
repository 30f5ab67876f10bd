package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/spendline/internal/model"
	"github.com/theirongolddev/spendline/internal/pipeline"
)

var (
	flagSessionID string
	flagCost      float64
)

var addSessionCmd = &cobra.Command{
	Use:   "add-session [snapshot-json]",
	Short: "Record a cumulative-cost snapshot (statusline hook entry point)",
	Long: "Reads a snapshot JSON payload from stdin, an argument, or\n" +
		"--session-id/--cost, computes the spend since the last observation\n" +
		"for that session, folds it into the hour/day/week windows, and\n" +
		"prints the result as JSON.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAddSession,
}

func init() {
	rootCmd.AddCommand(addSessionCmd)
	addSessionCmd.Flags().StringVar(&flagSessionID, "session-id", "", "Session identifier")
	addSessionCmd.Flags().Float64Var(&flagCost, "cost", 0, "Cumulative session cost in USD")
}

func runAddSession(cmd *cobra.Command, args []string) error {
	sessionID, cumulative, err := resolveSnapshot(cmd, args)
	if err != nil {
		return err
	}
	// Reject bad input before opening any store.
	if err := pipeline.ValidateObservation(sessionID, cumulative); err != nil {
		return err
	}

	engine, cleanup, err := newEngine()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := engine.AddObservation(ctx, sessionID, cumulative)
	if err != nil {
		return err
	}

	out, err := json.Marshal(result)
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// resolveSnapshot takes the observation from flags when both are set,
// otherwise decodes the payload from the argument or stdin. Flags
// override individual fields of a supplied payload.
func resolveSnapshot(cmd *cobra.Command, args []string) (string, float64, error) {
	haveID := cmd.Flags().Changed("session-id")
	haveCost := cmd.Flags().Changed("cost")
	if haveID && haveCost {
		return flagSessionID, flagCost, nil
	}

	var snap model.Snapshot
	if len(args) == 1 {
		if err := json.Unmarshal([]byte(args[0]), &snap); err != nil {
			return "", 0, fmt.Errorf("parsing snapshot argument: %w", err)
		}
	} else if err := json.NewDecoder(os.Stdin).Decode(&snap); err != nil {
		return "", 0, fmt.Errorf("reading snapshot from stdin: %w", err)
	}

	sessionID := snap.SessionID
	if haveID {
		sessionID = flagSessionID
	}

	cumulative, ok := snap.CumulativeCost()
	if haveCost {
		cumulative, ok = flagCost, true
	}
	if !ok {
		return "", 0, fmt.Errorf("%w: payload has no cumulative_cost_usd or cost.total_cost_usd", pipeline.ErrInvalidObservation)
	}
	return sessionID, cumulative, nil
}
