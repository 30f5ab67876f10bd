package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/spendline/internal/config"
	"github.com/theirongolddev/spendline/internal/model"
	"github.com/theirongolddev/spendline/internal/store"
)

// Options configures an Engine. Zero-value retention fields fall back to
// the config defaults.
type Options struct {
	Store store.TransactionalStore

	WeekStart        time.Weekday
	HourlyRetention  time.Duration
	DailyRetention   time.Duration
	WeeklyRetention  time.Duration
	SessionRetention time.Duration

	Logger *zap.Logger

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// OptionsFromConfig maps a loaded config onto engine options.
func OptionsFromConfig(s store.TransactionalStore, cfg config.Config, log *zap.Logger) Options {
	day := 24 * time.Hour
	return Options{
		Store:            s,
		WeekStart:        cfg.WeekStart(),
		HourlyRetention:  time.Duration(cfg.Retention.HourlyDays) * day,
		DailyRetention:   time.Duration(cfg.Retention.DailyDays) * day,
		WeeklyRetention:  time.Duration(cfg.Retention.WeeklyDays) * day,
		SessionRetention: time.Duration(cfg.Retention.SessionDays) * day,
		Logger:           log,
	}
}

// Engine wires the delta tracker, window aggregator, and query façade
// over a single store for one CLI invocation. Invocations are fresh
// short-lived processes; nothing is cached across them.
type Engine struct {
	tracker    *Tracker
	aggregator *Aggregator
	query      *Query
	now        func() time.Time
}

// New builds an engine from options.
func New(opts Options) *Engine {
	def := config.Default()
	day := 24 * time.Hour
	if opts.HourlyRetention <= 0 {
		opts.HourlyRetention = time.Duration(def.Retention.HourlyDays) * day
	}
	if opts.DailyRetention <= 0 {
		opts.DailyRetention = time.Duration(def.Retention.DailyDays) * day
	}
	if opts.WeeklyRetention <= 0 {
		opts.WeeklyRetention = time.Duration(def.Retention.WeeklyDays) * day
	}
	if opts.SessionRetention <= 0 {
		opts.SessionRetention = time.Duration(def.Retention.SessionDays) * day
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	periods := Periods{WeekStart: opts.WeekStart}
	retention := map[PeriodKind]time.Duration{
		KindHour: opts.HourlyRetention,
		KindDay:  opts.DailyRetention,
		KindWeek: opts.WeeklyRetention,
	}

	return &Engine{
		tracker:    NewTracker(opts.Store, opts.SessionRetention, opts.Logger),
		aggregator: NewAggregator(opts.Store, periods, retention, opts.Logger),
		query:      NewQuery(opts.Store, periods),
		now:        opts.Now,
	}
}

// AddObservation is the primary operation: compute the session delta,
// fold it into the windows, and return the delta plus current totals.
//
// The session watermark and the bucket writes are not atomic together.
// A crash between them can advance the watermark without the bucket
// update, a one-time undercount accepted in exchange for not building
// cross-file transactions.
func (e *Engine) AddObservation(ctx context.Context, sessionID string, cumulative float64) (model.AddResult, error) {
	now := e.now()

	delta, err := e.tracker.Observe(ctx, sessionID, cumulative, now)
	if err != nil {
		return model.AddResult{}, err
	}
	if err := e.aggregator.Add(ctx, delta, now); err != nil {
		return model.AddResult{}, err
	}

	totals, err := e.query.CurrentTotals(ctx, now)
	if err != nil {
		return model.AddResult{}, err
	}
	return model.AddResult{
		DeltaAdded:  delta,
		HourlyTotal: totals.Hourly,
		DailyTotal:  totals.Daily,
		WeeklyTotal: totals.Weekly,
	}, nil
}

// CurrentTotals returns the totals for the periods containing now.
func (e *Engine) CurrentTotals(ctx context.Context) (model.Totals, error) {
	return e.query.CurrentTotals(ctx, e.now())
}

// Statistics returns historical counts, sums, and averages.
func (e *Engine) Statistics(ctx context.Context) (model.Statistics, error) {
	return e.query.Statistics(ctx)
}

// Reset clears the collections named by scope.
func (e *Engine) Reset(ctx context.Context, scope Scope) error {
	return e.query.Reset(ctx, scope)
}
