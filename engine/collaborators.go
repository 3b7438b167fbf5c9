package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/sangeeta1998/het-sys/engine/trace"
)

// DecisionKind distinguishes what an applied Decision carries.
type DecisionKind string

const (
	DecisionStrategy   DecisionKind = "strategy"
	DecisionPlacement  DecisionKind = "placement"
	DecisionMitigation DecisionKind = "mitigation"
)

// Decision is the single unit handed to the ActionExecutor. Exactly the
// fields for its Kind are meaningful; the rest stay zero.
type Decision struct {
	ID    string
	Kind  DecisionKind
	State DiscreteState

	Strategy   Strategy           // DecisionStrategy
	Placement  *PlacementDecision // DecisionPlacement
	Mitigation MitigationAction   // DecisionMitigation

	Confidence float64
}

func newDecisionID() string {
	return uuid.NewString()
}

// Outcome is the executor's report for one applied decision.
type Outcome struct {
	Success bool
	Deltas  trace.ImprovementDeltas
}

// MetricsSource produces one snapshot per tick. Next may block; it must
// honor ctx cancellation. Transient failures surface as errors and degrade
// to a skipped tick.
type MetricsSource interface {
	Next(ctx context.Context) (MetricsSnapshot, error)
}

// ActionExecutor applies a decision to the managed environment and reports
// the observed result. Failures are reported, not thrown: an error marks the
// tick degraded and feeds the reward as a failure, never stops the loop.
type ActionExecutor interface {
	Apply(ctx context.Context, d Decision) (Outcome, error)
}

// ReportSink receives one AdaptationRecord per tick. Fire-and-forget: sink
// errors are logged and never abort the loop.
type ReportSink interface {
	Emit(r trace.AdaptationRecord) error
}

// SecurityAttestor supplies the opaque security posture score and threat
// level. The engine treats both purely as numbers.
type SecurityAttestor interface {
	Posture() (score float64, threat int)
}

// Inventory supplies the placement work for one tick: the workload unit to
// place and the candidate targets. Candidates are read-only to the engine.
type Inventory interface {
	Next() (WorkloadUnit, []Candidate)
}
