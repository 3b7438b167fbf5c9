package engine

import "fmt"

// Strategy is one member of the fixed adaptation catalog. The set is closed
// and the declaration order doubles as the deterministic tie-break priority
// when two strategies hold equal value for a state.
type Strategy int

const (
	StrategyLatencyOptimized Strategy = iota
	StrategyEnergyEfficient
	StrategyReliabilityFocused
	StrategyHybridAdaptive
	StrategyEmergencyMode
)

// NumStrategies is the size of the action catalog.
const NumStrategies = 5

func (s Strategy) String() string {
	switch s {
	case StrategyLatencyOptimized:
		return "latency_optimized"
	case StrategyEnergyEfficient:
		return "energy_efficient"
	case StrategyReliabilityFocused:
		return "reliability_focused"
	case StrategyHybridAdaptive:
		return "hybrid_adaptive"
	case StrategyEmergencyMode:
		return "emergency_mode"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Strategies returns the catalog in priority order.
func Strategies() []Strategy {
	return []Strategy{
		StrategyLatencyOptimized,
		StrategyEnergyEfficient,
		StrategyReliabilityFocused,
		StrategyHybridAdaptive,
		StrategyEmergencyMode,
	}
}

// ParseStrategy maps a canonical name back to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range Strategies() {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}
