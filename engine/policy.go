package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// SelectorConfig configures epsilon-greedy strategy selection.
type SelectorConfig struct {
	// Epsilon is the exploration probability, [0, 1]. With probability
	// Epsilon the selector picks a uniformly random strategy and reports
	// low confidence.
	Epsilon float64 `yaml:"epsilon"`
}

// DefaultSelectorConfig returns the standard exploration rate.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{Epsilon: 0.1}
}

// Validate returns an error if the config is invalid.
func (c SelectorConfig) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 || math.IsNaN(c.Epsilon) {
		return fmt.Errorf("selector: epsilon must be in [0, 1], got %v", c.Epsilon)
	}
	return nil
}

// exploreConfidence is reported for random (exploration) picks.
const exploreConfidence = 0.5

// confidenceCap bounds exploitation confidence strictly below 1.0.
const confidenceCap = 0.95

// Baseline expected improvement per strategy, scaled up when the network
// tier is degraded.
var baselineImprovement = map[Strategy]float64{
	StrategyLatencyOptimized:   0.30,
	StrategyEnergyEfficient:    0.25,
	StrategyReliabilityFocused: 0.20,
	StrategyHybridAdaptive:     0.35,
	StrategyEmergencyMode:      0.15,
}

const (
	criticalTierBoost = 1.5
	poorTierBoost     = 1.2
)

// ExpectedImprovement returns the estimated improvement for choosing strat
// in state: the fixed per-strategy baseline, multiplied by 1.5 when the
// network tier is critical and by 1.2 when it is poor.
func ExpectedImprovement(strat Strategy, state DiscreteState) float64 {
	base := baselineImprovement[strat]
	switch state.Network {
	case NetworkCritical:
		return base * criticalTierBoost
	case NetworkPoor:
		return base * poorTierBoost
	default:
		return base
	}
}

// StrategyDecision is the selector's output for one tick.
type StrategyDecision struct {
	Strategy            Strategy
	Confidence          float64
	ExpectedImprovement float64
	Reasoning           string
	Explored            bool
	Timestamp           time.Time
}

// Selector wraps the ValueStore with epsilon-greedy exploration. Selection
// never mutates the store: the Q update is a separate call made by the loop
// once the reward is known, so a caller may take a dry-run selection.
type Selector struct {
	store   *ValueStore
	rng     *rand.Rand
	epsilon float64
}

// NewSelector creates a Selector drawing exploration randomness from the
// policy subsystem of the given PartitionedRNG.
func NewSelector(cfg SelectorConfig, store *ValueStore, rng *PartitionedRNG) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Selector{
		store:   store,
		rng:     rng.ForSubsystem(SubsystemPolicy),
		epsilon: cfg.Epsilon,
	}, nil
}

// Select chooses a strategy for the state. Exploration picks uniformly at
// random with fixed confidence 0.5; exploitation takes the best stored
// strategy with confidence growing in the stored value, capped at 0.95.
func (sel *Selector) Select(state DiscreteState, now time.Time) StrategyDecision {
	if sel.rng.Float64() < sel.epsilon {
		all := Strategies()
		strat := all[sel.rng.Intn(len(all))]
		return StrategyDecision{
			Strategy:            strat,
			Confidence:          exploreConfidence,
			ExpectedImprovement: ExpectedImprovement(strat, state),
			Reasoning:           "exploration: random strategy selection",
			Explored:            true,
			Timestamp:           now,
		}
	}

	strat, maxQ := sel.store.BestStrategy(state)
	conf := 0.6 + maxQ/10
	if conf > confidenceCap {
		conf = confidenceCap
	}
	if conf < 0 {
		conf = 0
	}
	return StrategyDecision{
		Strategy:            strat,
		Confidence:          conf,
		ExpectedImprovement: ExpectedImprovement(strat, state),
		Reasoning:           fmt.Sprintf("exploitation: best known strategy for state %s", state.Key()),
		Timestamp:           now,
	}
}
