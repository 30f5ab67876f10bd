package model

import (
	"encoding/json"
	"testing"
)

func decodeSnapshot(t *testing.T, payload string) Snapshot {
	t.Helper()
	var s Snapshot
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return s
}

func TestSnapshot_MinimalPayload(t *testing.T) {
	s := decodeSnapshot(t, `{"session_id":"s1","cumulative_cost_usd":1.25}`)

	cost, ok := s.CumulativeCost()
	if !ok {
		t.Fatal("expected a cumulative cost")
	}
	if cost != 1.25 {
		t.Errorf("cost = %v, want 1.25", cost)
	}
}

func TestSnapshot_StatuslinePayload(t *testing.T) {
	s := decodeSnapshot(t, `{
		"session_id": "s1",
		"model": {"id": "some-model"},
		"cost": {"total_cost_usd": 0.0312, "total_duration_ms": 45000}
	}`)

	cost, ok := s.CumulativeCost()
	if !ok {
		t.Fatal("expected a cumulative cost from the nested shape")
	}
	if cost != 0.0312 {
		t.Errorf("cost = %v, want 0.0312", cost)
	}
}

func TestSnapshot_TopLevelWins(t *testing.T) {
	s := decodeSnapshot(t, `{"session_id":"s1","cumulative_cost_usd":2.0,"cost":{"total_cost_usd":1.0}}`)

	cost, _ := s.CumulativeCost()
	if cost != 2.0 {
		t.Errorf("cost = %v, want top-level 2.0", cost)
	}
}

func TestSnapshot_MissingCost(t *testing.T) {
	s := decodeSnapshot(t, `{"session_id":"s1"}`)
	if _, ok := s.CumulativeCost(); ok {
		t.Error("expected no cumulative cost")
	}

	s = decodeSnapshot(t, `{"session_id":"s1","cost":{}}`)
	if _, ok := s.CumulativeCost(); ok {
		t.Error("expected no cumulative cost from empty cost block")
	}
}

func TestSnapshot_ZeroCostIsPresent(t *testing.T) {
	// 0 is a real observation (idle render), distinct from absent.
	s := decodeSnapshot(t, `{"session_id":"s1","cumulative_cost_usd":0}`)
	cost, ok := s.CumulativeCost()
	if !ok || cost != 0 {
		t.Errorf("cost, ok = %v, %v; want 0, true", cost, ok)
	}
}
