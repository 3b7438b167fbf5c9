package engine

import (
	"fmt"
	"math"
	"sync"
)

// LearningConfig holds the Q-learning parameters. Both are fixed for the
// lifetime of a run; there is no decay schedule.
type LearningConfig struct {
	Alpha float64 `yaml:"alpha"` // learning rate, (0, 1]
	Gamma float64 `yaml:"gamma"` // discount factor, [0, 1)
}

// DefaultLearningConfig returns the standard learning parameters.
func DefaultLearningConfig() LearningConfig {
	return LearningConfig{Alpha: 0.1, Gamma: 0.9}
}

// Validate returns an error if the parameters are out of range.
func (c LearningConfig) Validate() error {
	if c.Alpha <= 0 || c.Alpha > 1 || math.IsNaN(c.Alpha) {
		return fmt.Errorf("learning: alpha must be in (0, 1], got %v", c.Alpha)
	}
	if c.Gamma < 0 || c.Gamma >= 1 || math.IsNaN(c.Gamma) {
		return fmt.Errorf("learning: gamma must be in [0, 1), got %v", c.Gamma)
	}
	return nil
}

// ValueEntry is one (state, strategy) cell of the value table in its
// persistable form.
type ValueEntry struct {
	StateKey string
	Strategy string
	Value    float64
}

// ValueStore is the tabular (state, strategy) value function. The table is
// dense: every reachable state gets a row for every strategy at
// construction, initialized to zero, and no row is ever removed, so lookups
// are total. A lookup miss therefore indicates a construction bug and panics
// rather than recovering.
//
// A mutex serializes updates so independent adaptation loops may share one
// store; under a single loop it is uncontended.
type ValueStore struct {
	mu    sync.Mutex
	table map[DiscreteState][]float64 // indexed by Strategy
	alpha float64
	gamma float64
}

// NewValueStore builds the dense table over the full state space.
func NewValueStore(cfg LearningConfig) (*ValueStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	table := make(map[DiscreteState][]float64)
	for _, s := range AllStates() {
		table[s] = make([]float64, NumStrategies)
	}
	return &ValueStore{table: table, alpha: cfg.Alpha, gamma: cfg.Gamma}, nil
}

func (vs *ValueStore) row(state DiscreteState) []float64 {
	row, ok := vs.table[state]
	if !ok {
		panic(fmt.Sprintf("value store: no row for state %q; state space built incompletely", state.Key()))
	}
	return row
}

// Value returns the stored value for one (state, strategy) pair.
func (vs *ValueStore) Value(state DiscreteState, strat Strategy) float64 {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return vs.row(state)[strat]
}

// BestStrategy returns the strategy with the maximum stored value for the
// state and that value. Ties break toward the lower catalog index, keeping
// behavior reproducible under a fixed seed.
func (vs *ValueStore) BestStrategy(state DiscreteState) (Strategy, float64) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	row := vs.row(state)
	best, bestVal := Strategy(0), row[0]
	for i := 1; i < len(row); i++ {
		if row[i] > bestVal {
			best, bestVal = Strategy(i), row[i]
		}
	}
	return best, bestVal
}

// MaxValue returns the maximum stored value across strategies for the state.
func (vs *ValueStore) MaxValue(state DiscreteState) float64 {
	_, v := vs.BestStrategy(state)
	return v
}

// Update applies the one-step bootstrapped rule
//
//	Q(s,a) ← Q(s,a) + α·(reward + γ·max_a' Q(s',a') − Q(s,a))
//
// The read-compute-write sequence holds the lock so concurrent loops never
// interleave on the same cell.
func (vs *ValueStore) Update(state DiscreteState, strat Strategy, reward float64, next DiscreteState) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	nextRow := vs.row(next)
	maxNext := nextRow[0]
	for _, v := range nextRow[1:] {
		if v > maxNext {
			maxNext = v
		}
	}
	row := vs.row(state)
	row[strat] += vs.alpha * (reward + vs.gamma*maxNext - row[strat])
}

// Export returns every cell in a stable order for persistence.
func (vs *ValueStore) Export() []ValueEntry {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	entries := make([]ValueEntry, 0, len(vs.table)*NumStrategies)
	for _, state := range AllStates() {
		row := vs.table[state]
		for i, v := range row {
			entries = append(entries, ValueEntry{
				StateKey: state.Key(),
				Strategy: Strategy(i).String(),
				Value:    v,
			})
		}
	}
	return entries
}

// Import overwrites cells from persisted entries. An entry naming a state or
// strategy outside the current layout is an error: the caller should have
// checked the layout signature before loading.
func (vs *ValueStore) Import(entries []ValueEntry) error {
	byKey := make(map[string]DiscreteState, len(vs.table))
	for _, s := range AllStates() {
		byKey[s.Key()] = s
	}
	vs.mu.Lock()
	defer vs.mu.Unlock()
	for _, e := range entries {
		state, ok := byKey[e.StateKey]
		if !ok {
			return fmt.Errorf("value store: persisted state %q not in current layout %s", e.StateKey, StateLayoutSignature())
		}
		strat, err := ParseStrategy(e.Strategy)
		if err != nil {
			return fmt.Errorf("value store: persisted entry for state %q: %w", e.StateKey, err)
		}
		vs.table[state][strat] = e.Value
	}
	return nil
}
