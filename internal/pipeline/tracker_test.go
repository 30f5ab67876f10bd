package pipeline

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/theirongolddev/spendline/internal/model"
	"github.com/theirongolddev/spendline/internal/store"
)

const day = 24 * time.Hour

func newTrackerStore(t *testing.T) store.TransactionalStore {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir(), store.FileStoreOptions{})
	require.NoError(t, err)
	return s
}

func TestTracker_FirstObservationCountsInFull(t *testing.T) {
	tr := NewTracker(newTrackerStore(t), 30*day, zap.NewNop())

	delta, err := tr.Observe(context.Background(), "s1", 1.25, wednesday)
	require.NoError(t, err)
	require.InDelta(t, 1.25, delta, 1e-9)
}

func TestTracker_MonotonicDeltasSumToFinal(t *testing.T) {
	tr := NewTracker(newTrackerStore(t), 30*day, zap.NewNop())
	ctx := context.Background()

	observations := []float64{0.10, 0.10, 0.45, 1.00, 1.00, 2.75}
	var sum float64
	for _, obs := range observations {
		delta, err := tr.Observe(ctx, "s1", obs, wednesday)
		require.NoError(t, err)
		require.GreaterOrEqual(t, delta, 0.0)
		sum += delta
	}
	require.InDelta(t, 2.75, sum, 1e-9, "deltas must sum to the final cumulative value")
}

func TestTracker_RepeatObservationIsZeroDelta(t *testing.T) {
	tr := NewTracker(newTrackerStore(t), 30*day, zap.NewNop())
	ctx := context.Background()

	_, err := tr.Observe(ctx, "s1", 1.00, wednesday)
	require.NoError(t, err)

	delta, err := tr.Observe(ctx, "s1", 1.00, wednesday)
	require.NoError(t, err)
	require.Zero(t, delta)
}

func TestTracker_WatermarkRegressionRestartsSession(t *testing.T) {
	tr := NewTracker(newTrackerStore(t), 30*day, zap.NewNop())
	ctx := context.Background()

	_, err := tr.Observe(ctx, "s1", 2.50, wednesday)
	require.NoError(t, err)

	// Upstream counter reset: the full new value counts, never a
	// negative delta.
	delta, err := tr.Observe(ctx, "s1", 0.10, wednesday)
	require.NoError(t, err)
	require.InDelta(t, 0.10, delta, 1e-9)

	// The discarded watermark stays discarded.
	delta, err = tr.Observe(ctx, "s1", 0.30, wednesday)
	require.NoError(t, err)
	require.InDelta(t, 0.20, delta, 1e-9)
}

func TestTracker_InvalidObservationsAreNoOps(t *testing.T) {
	st := newTrackerStore(t)
	tr := NewTracker(st, 30*day, zap.NewNop())
	ctx := context.Background()

	cases := []struct {
		name      string
		sessionID string
		cost      float64
	}{
		{"empty session id", "", 1.0},
		{"blank session id", "   ", 1.0},
		{"negative cost", "s1", -0.5},
		{"nan cost", "s1", math.NaN()},
		{"inf cost", "s1", math.Inf(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tr.Observe(ctx, tc.sessionID, tc.cost, wednesday)
			require.ErrorIs(t, err, ErrInvalidObservation)
		})
	}

	doc, err := store.Fetch[model.SessionState](ctx, st, store.Sessions)
	require.NoError(t, err)
	require.Empty(t, doc, "rejected observations must not write state")
}

func TestTracker_PrunesIdleSessions(t *testing.T) {
	st := newTrackerStore(t)
	tr := NewTracker(st, 30*day, zap.NewNop())
	ctx := context.Background()

	_, err := tr.Observe(ctx, "stale", 1.0, wednesday.Add(-40*day))
	require.NoError(t, err)
	_, err = tr.Observe(ctx, "fresh", 1.0, wednesday)
	require.NoError(t, err)

	doc, err := store.Fetch[model.SessionState](ctx, st, store.Sessions)
	require.NoError(t, err)
	require.Contains(t, doc, "fresh")
	require.NotContains(t, doc, "stale", "sessions idle past retention are dropped")
}
