package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/spendline/internal/model"
	"github.com/theirongolddev/spendline/internal/store"
)

// Aggregator folds validated deltas into the hour/day/week buckets and
// prunes expired buckets on every write, keeping file size bounded
// without a separate cleanup job.
type Aggregator struct {
	store     store.TransactionalStore
	periods   Periods
	retention map[PeriodKind]time.Duration
	log       *zap.Logger
}

// NewAggregator returns an aggregator with per-kind retention windows.
func NewAggregator(s store.TransactionalStore, periods Periods, retention map[PeriodKind]time.Duration, log *zap.Logger) *Aggregator {
	return &Aggregator{store: s, periods: periods, retention: retention, log: log}
}

// Add folds delta into the bucket of each period kind containing now.
// A zero delta returns before any lock is taken: idle prompt re-renders
// are the overwhelmingly common case and must not pay for I/O. The three
// collections are independent, so their writes run concurrently.
func (a *Aggregator) Add(ctx context.Context, delta float64, now time.Time) error {
	if delta == 0 {
		return nil
	}
	if delta < 0 {
		return fmt.Errorf("%w: negative delta %g", ErrInvalidObservation, delta)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range Kinds {
		g.Go(func() error {
			return a.addOne(gctx, kind, delta, now)
		})
	}
	return g.Wait()
}

func (a *Aggregator) addOne(ctx context.Context, kind PeriodKind, delta float64, now time.Time) error {
	key := a.periods.Key(kind, now)
	return store.Mutate(ctx, a.store, CollectionFor(kind), func(doc map[string]model.PeriodBucket) error {
		b := doc[key]
		b.Add(delta)
		doc[key] = b
		a.prune(kind, doc, now)
		return nil
	})
}

func (a *Aggregator) prune(kind PeriodKind, doc map[string]model.PeriodBucket, now time.Time) {
	retention, ok := a.retention[kind]
	if !ok || retention <= 0 {
		return
	}
	pruned := 0
	for key := range doc {
		if a.periods.Expired(kind, key, now, retention) {
			delete(doc, key)
			pruned++
		}
	}
	if pruned > 0 {
		a.log.Debug("pruned expired buckets",
			zap.String("kind", string(kind)),
			zap.Int("count", pruned))
	}
}

// CollectionFor maps a period kind to its store collection.
func CollectionFor(kind PeriodKind) string {
	switch kind {
	case KindHour:
		return store.Hourly
	case KindDay:
		return store.Daily
	case KindWeek:
		return store.Weekly
	}
	return string(kind)
}
