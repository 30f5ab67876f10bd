// Package model defines domain types for spendline's session tracking and
// period buckets.
package model

import "time"

// SessionState is the persisted watermark for one agent session.
type SessionState struct {
	LastCumulativeCost float64   `json:"last_cumulative_cost"`
	LastSeenAt         time.Time `json:"last_seen_at"`
}

// PeriodBucket accumulates cost deltas for a single hour, day, or week.
type PeriodBucket struct {
	Total       float64 `json:"total"`
	SampleCount int64   `json:"sample_count"`
}

// Add folds one delta into the bucket.
func (b *PeriodBucket) Add(delta float64) {
	b.Total += delta
	b.SampleCount++
}

// AddResult is the compact payload printed after an add-session call,
// consumed by the status-line renderer.
type AddResult struct {
	DeltaAdded  float64 `json:"delta_added"`
	HourlyTotal float64 `json:"hourly_total"`
	DailyTotal  float64 `json:"daily_total"`
	WeeklyTotal float64 `json:"weekly_total"`
}

// Totals holds the bucket totals for the periods containing a single instant.
type Totals struct {
	Hourly float64 `json:"hourly_total"`
	Daily  float64 `json:"daily_total"`
	Weekly float64 `json:"weekly_total"`
}

// KindStats summarizes all retained buckets of one period kind.
type KindStats struct {
	Periods int     `json:"periods"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
}

// Statistics is the historical view served by the stats command.
type Statistics struct {
	Hourly          KindStats `json:"hourly"`
	Daily           KindStats `json:"daily"`
	Weekly          KindStats `json:"weekly"`
	TrackedSessions int       `json:"tracked_sessions"`
}
