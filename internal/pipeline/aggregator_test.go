package pipeline

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/theirongolddev/spendline/internal/model"
	"github.com/theirongolddev/spendline/internal/store"
)

func newAggregator(t *testing.T, dir string) (*Aggregator, store.TransactionalStore) {
	t.Helper()
	st, err := store.NewFileStore(dir, store.FileStoreOptions{})
	require.NoError(t, err)
	periods := Periods{WeekStart: time.Monday}
	retention := map[PeriodKind]time.Duration{
		KindHour: 30 * day,
		KindDay:  30 * day,
		KindWeek: 365 * day,
	}
	return NewAggregator(st, periods, retention, zap.NewNop()), st
}

func TestAggregator_AdditivityAcrossWindows(t *testing.T) {
	agg, st := newAggregator(t, t.TempDir())
	ctx := context.Background()

	deltas := []float64{0.25, 0.50, 0.75}
	for _, d := range deltas {
		require.NoError(t, agg.Add(ctx, d, wednesday))
	}

	periods := Periods{WeekStart: time.Monday}
	for _, kind := range Kinds {
		doc, err := store.Fetch[model.PeriodBucket](ctx, st, CollectionFor(kind))
		require.NoError(t, err)

		b := doc[periods.Key(kind, wednesday)]
		require.InDelta(t, 1.50, b.Total, 1e-9, "kind %s", kind)
		require.EqualValues(t, 3, b.SampleCount, "kind %s", kind)
	}
}

func TestAggregator_ZeroDeltaTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	agg, _ := newAggregator(t, dir)

	require.NoError(t, agg.Add(context.Background(), 0, wednesday))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "a zero delta must not incur any I/O")
}

func TestAggregator_NegativeDeltaRejected(t *testing.T) {
	agg, _ := newAggregator(t, t.TempDir())
	err := agg.Add(context.Background(), -0.01, wednesday)
	require.ErrorIs(t, err, ErrInvalidObservation)
}

func TestAggregator_SeparateHoursSeparateBuckets(t *testing.T) {
	agg, st := newAggregator(t, t.TempDir())
	ctx := context.Background()

	require.NoError(t, agg.Add(ctx, 1.0, wednesday))
	require.NoError(t, agg.Add(ctx, 2.0, wednesday.Add(time.Hour)))

	doc, err := store.Fetch[model.PeriodBucket](ctx, st, store.Hourly)
	require.NoError(t, err)
	require.Len(t, doc, 2)

	// Both hours still land in the same day.
	daily, err := store.Fetch[model.PeriodBucket](ctx, st, store.Daily)
	require.NoError(t, err)
	p := Periods{WeekStart: time.Monday}
	require.InDelta(t, 3.0, daily[p.Key(KindDay, wednesday)].Total, 1e-9)
}

func TestAggregator_PrunesExpiredBuckets(t *testing.T) {
	agg, st := newAggregator(t, t.TempDir())
	ctx := context.Background()

	old := wednesday.AddDate(0, 0, -45)
	require.NoError(t, agg.Add(ctx, 5.0, old))

	// The next write prunes everything past retention.
	require.NoError(t, agg.Add(ctx, 1.0, wednesday))

	p := Periods{WeekStart: time.Monday}
	for _, kind := range []PeriodKind{KindHour, KindDay} {
		doc, err := store.Fetch[model.PeriodBucket](ctx, st, CollectionFor(kind))
		require.NoError(t, err)
		require.NotContains(t, doc, p.Key(kind, old), "kind %s", kind)
		require.Contains(t, doc, p.Key(kind, wednesday), "kind %s", kind)
	}

	// Weekly retention is longer; the old week survives.
	weekly, err := store.Fetch[model.PeriodBucket](ctx, st, store.Weekly)
	require.NoError(t, err)
	require.Contains(t, weekly, p.Key(KindWeek, old))
}
