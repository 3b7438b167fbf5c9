package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sangeeta1998/het-sys/engine/trace"
)

// MitigationAction is one member of the fixed self-healing catalog.
type MitigationAction string

const (
	MitigationRestart           MitigationAction = "restart"
	MitigationMigrate           MitigationAction = "migrate"
	MitigationScale             MitigationAction = "scale"
	MitigationFallback          MitigationAction = "fallback"
	MitigationOptimizePlacement MitigationAction = "optimize_placement"
)

// DispatcherConfig selects between equally plausible mitigations where the
// category admits more than one. Latency violations historically flipped a
// coin between migrate and scale; reproducibility requires the choice to be
// an operator preference instead.
type DispatcherConfig struct {
	// PreferScaleForLatency answers latency violations with "scale"
	// instead of the default "migrate".
	PreferScaleForLatency bool `yaml:"prefer_scale_for_latency"`
}

// Dispatcher maps violations to mitigation actions and records outcomes.
// The mapping is a deterministic per-category lookup; the dispatcher never
// judges success itself, that comes from the external executor.
type Dispatcher struct {
	cfg DispatcherConfig
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{cfg: cfg}
}

// ActionFor returns the policy-defined mitigation for an objective category.
func (d *Dispatcher) ActionFor(objective Objective) MitigationAction {
	switch objective {
	case ObjectiveLatency:
		if d.cfg.PreferScaleForLatency {
			return MitigationScale
		}
		return MitigationMigrate
	case ObjectiveAvailability:
		return MitigationRestart
	case ObjectiveEnergy:
		return MitigationOptimizePlacement
	default:
		return MitigationFallback
	}
}

// Dispatch applies one mitigation per violation through the executor and
// records the outcome. Executor errors are recorded as failed outcomes, not
// returned: healing never aborts the caller's tick.
func (d *Dispatcher) Dispatch(ctx context.Context, exec ActionExecutor, state DiscreteState,
	violations []trace.ViolationRecord, now time.Time) []trace.HealingOutcome {

	outcomes := make([]trace.HealingOutcome, 0, len(violations))
	for _, v := range violations {
		action := d.ActionFor(Objective(v.Objective))
		decision := Decision{
			ID:         newDecisionID(),
			Kind:       DecisionMitigation,
			State:      state,
			Mitigation: action,
			Confidence: fallbackConfidence,
		}
		out, err := exec.Apply(ctx, decision)
		if err != nil {
			logrus.Warnf("healing: %s for %s failed to apply: %v", action, v.Objective, err)
			out = Outcome{}
		}
		outcomes = append(outcomes, trace.HealingOutcome{
			Objective: v.Objective,
			Action:    string(action),
			Success:   out.Success,
			Addressed: out.Success && !v.Predicted,
			Timestamp: now,
		})
	}
	return outcomes
}
