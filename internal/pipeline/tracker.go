package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/spendline/internal/model"
	"github.com/theirongolddev/spendline/internal/store"
)

// ErrInvalidObservation rejects malformed input: empty session id,
// negative or non-finite cost. The observation is a no-op.
var ErrInvalidObservation = errors.New("invalid observation")

// Tracker converts cumulative cost observations into non-negative
// incremental deltas, one watermark per session id.
type Tracker struct {
	store     store.TransactionalStore
	retention time.Duration
	log       *zap.Logger
}

// NewTracker returns a tracker that drops sessions idle longer than
// retention.
func NewTracker(s store.TransactionalStore, retention time.Duration, log *zap.Logger) *Tracker {
	return &Tracker{store: s, retention: retention, log: log}
}

// Observe records the cumulative cost for sessionID and returns the
// delta since the previous observation. A first observation counts in
// full. A cumulative value below the stored watermark means the session
// id was reused or the upstream counter reset; the watermark is
// discarded and the full value counts again, so the delta can never go
// negative.
func (t *Tracker) Observe(ctx context.Context, sessionID string, cumulative float64, now time.Time) (float64, error) {
	if err := ValidateObservation(sessionID, cumulative); err != nil {
		return 0, err
	}

	var delta float64
	err := store.Mutate(ctx, t.store, store.Sessions, func(doc map[string]model.SessionState) error {
		prev, ok := doc[sessionID]
		switch {
		case !ok:
			delta = cumulative
		case cumulative >= prev.LastCumulativeCost:
			delta = cumulative - prev.LastCumulativeCost
		default:
			delta = cumulative
			t.log.Info("watermark regression, treating as new session",
				zap.String("session", sessionID),
				zap.Float64("previous", prev.LastCumulativeCost),
				zap.Float64("observed", cumulative))
		}

		doc[sessionID] = model.SessionState{
			LastCumulativeCost: cumulative,
			LastSeenAt:         now,
		}
		t.pruneIdle(doc, now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return delta, nil
}

// ValidateObservation checks an observation without touching state.
func ValidateObservation(sessionID string, cumulative float64) error {
	switch {
	case strings.TrimSpace(sessionID) == "":
		return fmt.Errorf("%w: empty session id", ErrInvalidObservation)
	case math.IsNaN(cumulative) || math.IsInf(cumulative, 0):
		return fmt.Errorf("%w: non-finite cost", ErrInvalidObservation)
	case cumulative < 0:
		return fmt.Errorf("%w: negative cost %g", ErrInvalidObservation, cumulative)
	}
	return nil
}

func (t *Tracker) pruneIdle(doc map[string]model.SessionState, now time.Time) {
	pruned := 0
	for id, st := range doc {
		if now.Sub(st.LastSeenAt) > t.retention {
			delete(doc, id)
			pruned++
		}
	}
	if pruned > 0 {
		t.log.Debug("pruned idle sessions", zap.Int("count", pruned))
	}
}
