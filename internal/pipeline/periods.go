// Package pipeline is the aggregation engine: it turns cumulative-cost
// observations into deltas and folds them into rolling period buckets.
package pipeline

import (
	"time"
)

// PeriodKind identifies one of the rolling windows.
type PeriodKind string

// The three window granularities.
const (
	KindHour PeriodKind = "hour"
	KindDay  PeriodKind = "day"
	KindWeek PeriodKind = "week"
)

// Kinds lists every period kind in aggregation order.
var Kinds = []PeriodKind{KindHour, KindDay, KindWeek}

const (
	hourKeyLayout = "2006-01-02T15"
	dayKeyLayout  = "2006-01-02"
)

// Periods computes canonical bucket keys. All boundaries are local time
// to match what the user sees in their terminal: hours truncate to the
// hour, days to midnight, weeks to the configured start day (Monday by
// default, the ISO convention). Week buckets are keyed by the date of
// their start day.
type Periods struct {
	WeekStart time.Weekday
}

// Key returns the canonical bucket key for the period of kind containing t.
func (p Periods) Key(kind PeriodKind, t time.Time) string {
	t = t.Local()
	switch kind {
	case KindHour:
		return t.Format(hourKeyLayout)
	case KindDay:
		return t.Format(dayKeyLayout)
	case KindWeek:
		return p.weekStartOf(t).Format(dayKeyLayout)
	}
	return ""
}

// Start parses a bucket key back to the period's starting instant.
func (p Periods) Start(kind PeriodKind, key string) (time.Time, error) {
	layout := dayKeyLayout
	if kind == KindHour {
		layout = hourKeyLayout
	}
	return time.ParseInLocation(layout, key, time.Local)
}

// Expired reports whether the bucket at key started before now minus
// retention. Unparseable keys count as expired so damaged entries drain
// out with normal pruning.
func (p Periods) Expired(kind PeriodKind, key string, now time.Time, retention time.Duration) bool {
	start, err := p.Start(kind, key)
	if err != nil {
		return true
	}
	return now.Sub(start) > retention
}

func (p Periods) weekStartOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	back := (int(day.Weekday()) - int(p.WeekStart) + 7) % 7
	return day.AddDate(0, 0, -back)
}
