package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/spendline/internal/model"
	"github.com/theirongolddev/spendline/internal/store"
)

// Scope selects which collections a Reset clears.
type Scope string

// Reset scopes.
const (
	ScopeAll      Scope = "all"
	ScopeHourly   Scope = "hourly"
	ScopeDaily    Scope = "daily"
	ScopeWeekly   Scope = "weekly"
	ScopeSessions Scope = "sessions"
)

// ParseScope validates a user-supplied scope string.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeAll, ScopeHourly, ScopeDaily, ScopeWeekly, ScopeSessions:
		return Scope(s), nil
	}
	return "", fmt.Errorf("unknown scope %q (want all, hourly, daily, weekly, or sessions)", s)
}

func (s Scope) collections() []string {
	switch s {
	case ScopeHourly:
		return []string{store.Hourly}
	case ScopeDaily:
		return []string{store.Daily}
	case ScopeWeekly:
		return []string{store.Weekly}
	case ScopeSessions:
		return []string{store.Sessions}
	}
	return store.Collections
}

// Query is the read-only reporting façade over the persisted buckets.
// Reads take the store's load path for a self-consistent snapshot of a
// single collection but hold no lock while formatting.
type Query struct {
	store   store.TransactionalStore
	periods Periods
}

// NewQuery returns a query façade over s.
func NewQuery(s store.TransactionalStore, periods Periods) *Query {
	return &Query{store: s, periods: periods}
}

// CurrentTotals returns the bucket totals for the hour, day, and week
// containing now. Absent buckets read as zero.
func (q *Query) CurrentTotals(ctx context.Context, now time.Time) (model.Totals, error) {
	var totals model.Totals
	for _, kind := range Kinds {
		doc, err := store.Fetch[model.PeriodBucket](ctx, q.store, CollectionFor(kind))
		if err != nil {
			return model.Totals{}, err
		}
		total := doc[q.periods.Key(kind, now)].Total
		switch kind {
		case KindHour:
			totals.Hourly = total
		case KindDay:
			totals.Daily = total
		case KindWeek:
			totals.Weekly = total
		}
	}
	return totals, nil
}

// Statistics summarizes all retained buckets per kind plus the tracked
// session count. Averages are zero when a kind has no buckets.
func (q *Query) Statistics(ctx context.Context) (model.Statistics, error) {
	var stats model.Statistics
	for _, kind := range Kinds {
		doc, err := store.Fetch[model.PeriodBucket](ctx, q.store, CollectionFor(kind))
		if err != nil {
			return model.Statistics{}, err
		}
		ks := summarize(doc)
		switch kind {
		case KindHour:
			stats.Hourly = ks
		case KindDay:
			stats.Daily = ks
		case KindWeek:
			stats.Weekly = ks
		}
	}

	sessions, err := store.Fetch[model.SessionState](ctx, q.store, store.Sessions)
	if err != nil {
		return model.Statistics{}, err
	}
	stats.TrackedSessions = len(sessions)
	return stats, nil
}

// Reset clears the collections named by scope. Confirmation is the
// caller's responsibility; this simply executes.
func (q *Query) Reset(ctx context.Context, scope Scope) error {
	for _, collection := range scope.collections() {
		if err := store.Clear(ctx, q.store, collection); err != nil {
			return fmt.Errorf("resetting %s: %w", collection, err)
		}
	}
	return nil
}

func summarize(doc map[string]model.PeriodBucket) model.KindStats {
	ks := model.KindStats{Periods: len(doc)}
	for _, b := range doc {
		ks.Total += b.Total
	}
	if ks.Periods > 0 {
		ks.Average = ks.Total / float64(ks.Periods)
	}
	return ks
}
