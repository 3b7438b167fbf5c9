// Package trace provides decision-record types for the adaptation loop.
// This package has no dependencies on engine/; it stores pure data types.
package trace

import "time"

// ImprovementDeltas are the observed per-tick improvements reported by the
// action executor, as fractions (negative values are regressions).
type ImprovementDeltas struct {
	Latency     float64
	Energy      float64
	Reliability float64
}

// ViolationRecord captures one SLO guard trip. Predicted marks trend-based
// pre-emptive detections that have not actually occurred yet.
type ViolationRecord struct {
	Objective      string
	CurrentValue   float64
	Threshold      float64
	ViolationCount int
	Predicted      bool
	Timestamp      time.Time
}

// HealingOutcome captures one mitigation dispatched for a violation.
// Success comes from the external executor; Addressed marks whether the
// guard's violation is considered handled for reporting purposes.
type HealingOutcome struct {
	Objective string
	Action    string
	Success   bool
	Addressed bool
	Timestamp time.Time
}

// AdaptationRecord is the per-tick summary emitted to the report sink and
// appended to the bounded history. Append-only; never mutated after the
// tick that created it.
type AdaptationRecord struct {
	RunID string
	Tick  int64

	StateKey string
	Mode     string

	// Strategy mode fields.
	Strategy            string
	Explored            bool
	ExpectedImprovement float64

	// Placement mode fields.
	PlacementTarget string
	PlacementScore  float64

	Rationale  string
	Confidence float64

	Success bool
	Reward  float64
	Deltas  ImprovementDeltas

	Violations []ViolationRecord
	Healings   []HealingOutcome

	// Degraded marks ticks where a collaborator failed and the decision
	// phase was skipped.
	Degraded bool

	// Raw telemetry carried for the trend predictor.
	Latency     float64
	CPULoad     float64
	ThreatLevel int

	Timestamp time.Time
}
