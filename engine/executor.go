package engine

import (
	"context"
	"math/rand"

	"github.com/sangeeta1998/het-sys/engine/trace"
)

// deltaRange is a closed interval an improvement delta is drawn from.
type deltaRange struct{ lo, hi float64 }

func (r deltaRange) draw(rng *rand.Rand) float64 {
	return r.lo + rng.Float64()*(r.hi-r.lo)
}

// Per-strategy improvement profiles. Latency-optimized trades energy for
// speed, energy-efficient trades latency for savings, emergency mode sheds
// everything but reliability.
var strategyDeltas = map[Strategy]struct{ latency, energy, reliability deltaRange }{
	StrategyLatencyOptimized:   {deltaRange{0.2, 0.4}, deltaRange{-0.1, 0.1}, deltaRange{0.1, 0.2}},
	StrategyEnergyEfficient:    {deltaRange{-0.1, 0.1}, deltaRange{0.2, 0.4}, deltaRange{0.05, 0.15}},
	StrategyReliabilityFocused: {deltaRange{0.1, 0.2}, deltaRange{0.05, 0.15}, deltaRange{0.3, 0.5}},
	StrategyHybridAdaptive:     {deltaRange{0.15, 0.25}, deltaRange{0.15, 0.25}, deltaRange{0.15, 0.25}},
	StrategyEmergencyMode:      {deltaRange{-0.2, 0.1}, deltaRange{0.3, 0.5}, deltaRange{0.4, 0.6}},
}

// successProbability by network tier: decisions land less often the worse
// the network is.
func successProbability(tier NetworkTier) float64 {
	switch tier {
	case NetworkExcellent, NetworkGood:
		return 0.8
	case NetworkFair:
		return 0.65
	case NetworkPoor:
		return 0.45
	default:
		return 0.25
	}
}

// SimExecutor is a deterministic, seeded stand-in for a real environment: it
// draws outcome deltas from per-strategy profiles and decides success by the
// network tier's success probability. All randomness comes from the executor
// subsystem of the partitioned RNG, so runs replay exactly under one seed.
type SimExecutor struct {
	rng *rand.Rand
}

// NewSimExecutor creates a SimExecutor over the given PartitionedRNG.
func NewSimExecutor(rng *PartitionedRNG) *SimExecutor {
	return &SimExecutor{rng: rng.ForSubsystem(SubsystemExecutor)}
}

// Apply implements ActionExecutor.
func (e *SimExecutor) Apply(ctx context.Context, d Decision) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	success := e.rng.Float64() < successProbability(d.State.Network)

	var deltas trace.ImprovementDeltas
	switch d.Kind {
	case DecisionStrategy:
		p := strategyDeltas[d.Strategy]
		deltas = trace.ImprovementDeltas{
			Latency:     p.latency.draw(e.rng),
			Energy:      p.energy.draw(e.rng),
			Reliability: p.reliability.draw(e.rng),
		}
	default:
		// Placements and mitigations improve in proportion to the
		// confidence behind them.
		p := strategyDeltas[StrategyHybridAdaptive]
		deltas = trace.ImprovementDeltas{
			Latency:     p.latency.draw(e.rng) * d.Confidence,
			Energy:      p.energy.draw(e.rng) * d.Confidence,
			Reliability: p.reliability.draw(e.rng) * d.Confidence,
		}
	}
	return Outcome{Success: success, Deltas: deltas}, nil
}
