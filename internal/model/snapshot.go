package model

// Snapshot is one cumulative-cost observation piped in by the status-line
// hook. Two payload shapes are accepted: the minimal contract with
// cumulative_cost_usd at the top level, and the full status-line payload
// where the running cost sits under cost.total_cost_usd. The top-level
// field wins when both are present.
type Snapshot struct {
	SessionID         string        `json:"session_id"`
	CumulativeCostUSD *float64      `json:"cumulative_cost_usd"`
	Cost              *SnapshotCost `json:"cost"`
}

// SnapshotCost is the nested cost block of the full status-line payload.
type SnapshotCost struct {
	TotalCostUSD *float64 `json:"total_cost_usd"`
}

// CumulativeCost resolves the cumulative cost from whichever field the
// payload carried. The second return is false when neither was present.
func (s Snapshot) CumulativeCost() (float64, bool) {
	if s.CumulativeCostUSD != nil {
		return *s.CumulativeCostUSD, true
	}
	if s.Cost != nil && s.Cost.TotalCostUSD != nil {
		return *s.Cost.TotalCostUSD, true
	}
	return 0, false
}
