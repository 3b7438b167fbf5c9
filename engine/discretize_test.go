package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBreakpoints_Valid(t *testing.T) {
	assert.NoError(t, DefaultBreakpoints().Validate())
}

func TestBreakpoints_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Breakpoints)
	}{
		{"latency wrong count", func(bp *Breakpoints) { bp.Latency = []float64{30, 50} }},
		{"latency not ascending", func(bp *Breakpoints) { bp.Latency = []float64{30, 50, 40, 200} }},
		{"latency NaN", func(bp *Breakpoints) { bp.Latency[2] = math.NaN() }},
		{"bandwidth not descending", func(bp *Breakpoints) { bp.Bandwidth = []float64{80, 60, 70, 20} }},
		{"load wrong count", func(bp *Breakpoints) { bp.Load = []float64{0.5} }},
		{"energy duplicate cut", func(bp *Breakpoints) { bp.Energy = []float64{0.4, 0.4} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bp := DefaultBreakpoints()
			tt.mutate(&bp)
			assert.Error(t, bp.Validate())
			_, err := NewDiscretizer(bp)
			assert.Error(t, err)
		})
	}
}

// nominalSnapshot is excellent on every network dimension and low elsewhere.
func nominalSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Latency:    10,
		Bandwidth:  100,
		PacketLoss: 0.001,
		CPULoad:    0.1,
		MemoryLoad: 0.1,
		Energy:     0.2,
	}
}

func TestDiscretize_NominalSnapshot(t *testing.T) {
	d, err := NewDiscretizer(DefaultBreakpoints())
	require.NoError(t, err)

	state := d.Discretize(nominalSnapshot())
	assert.Equal(t, NetworkExcellent, state.Network)
	assert.Equal(t, LoadLow, state.Load)
	assert.Equal(t, EnergyLow, state.Energy)
	assert.Equal(t, "excellent_low_low", state.Key())
}

func TestDiscretize_NetworkTierIsWorstOfThree(t *testing.T) {
	d, err := NewDiscretizer(DefaultBreakpoints())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*MetricsSnapshot)
		want   NetworkTier
	}{
		{"latency alone drags to critical", func(s *MetricsSnapshot) { s.Latency = 250 }, NetworkCritical},
		{"bandwidth alone drags to poor", func(s *MetricsSnapshot) { s.Bandwidth = 25 }, NetworkPoor},
		{"packet loss alone drags to fair", func(s *MetricsSnapshot) { s.PacketLoss = 0.06 }, NetworkFair},
		{"worst dimension wins", func(s *MetricsSnapshot) { s.Latency = 60; s.Bandwidth = 15 }, NetworkCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := nominalSnapshot()
			tt.mutate(&snap)
			assert.Equal(t, tt.want, d.Discretize(snap).Network)
		})
	}
}

func TestDiscretize_BoundaryValuesLandInUpperBucket(t *testing.T) {
	d, err := NewDiscretizer(DefaultBreakpoints())
	require.NoError(t, err)

	// Latency exactly on the 30ms cut is good, not excellent.
	snap := nominalSnapshot()
	snap.Latency = 30
	assert.Equal(t, NetworkGood, d.Discretize(snap).Network)

	// Load exactly on the 0.7 cut is high, not medium.
	snap = nominalSnapshot()
	snap.CPULoad = 0.7
	snap.MemoryLoad = 0.7
	assert.Equal(t, LoadHigh, d.Discretize(snap).Load)

	// Energy exactly on the 0.4 cut is medium, not low.
	snap = nominalSnapshot()
	snap.Energy = 0.4
	assert.Equal(t, EnergyMedium, d.Discretize(snap).Energy)
}

func TestDiscretize_BandwidthBoundaryFallsToWorseSide(t *testing.T) {
	d, err := NewDiscretizer(DefaultBreakpoints())
	require.NoError(t, err)

	// Bandwidth exactly on the 80Mbps cut is good, not excellent: on the
	// metric axis the interval is still half-open toward the worse tier.
	snap := nominalSnapshot()
	snap.Bandwidth = 80
	assert.Equal(t, NetworkGood, d.Discretize(snap).Network)
}

func TestDiscretize_LoadAveragesCPUAndMemory(t *testing.T) {
	d, err := NewDiscretizer(DefaultBreakpoints())
	require.NoError(t, err)

	snap := nominalSnapshot()
	snap.CPULoad = 0.9
	snap.MemoryLoad = 0.1
	assert.Equal(t, LoadMedium, d.Discretize(snap).Load)
}

func TestDiscretize_ExtremeInputsStayInRange(t *testing.T) {
	d, err := NewDiscretizer(DefaultBreakpoints())
	require.NoError(t, err)

	extremes := []MetricsSnapshot{
		{Latency: 1e9, Bandwidth: 0, PacketLoss: 1, CPULoad: 5, MemoryLoad: 5, Energy: 99},
		{Latency: -10, Bandwidth: 1e9, PacketLoss: -1, CPULoad: -5, MemoryLoad: -5, Energy: -1},
		{},
	}
	for _, snap := range extremes {
		state := d.Discretize(snap)
		assert.GreaterOrEqual(t, int(state.Network), 0)
		assert.Less(t, int(state.Network), NumNetworkTiers)
		assert.GreaterOrEqual(t, int(state.Load), 0)
		assert.Less(t, int(state.Load), NumLoadTiers)
		assert.GreaterOrEqual(t, int(state.Energy), 0)
		assert.Less(t, int(state.Energy), NumEnergyTiers)
	}
}

func TestAllStates_FullCartesianProduct(t *testing.T) {
	states := AllStates()
	assert.Len(t, states, NumNetworkTiers*NumLoadTiers*NumEnergyTiers)

	seen := make(map[string]bool, len(states))
	for _, s := range states {
		assert.False(t, seen[s.Key()], "duplicate state %s", s.Key())
		seen[s.Key()] = true
	}
}

func TestStateLayoutSignature(t *testing.T) {
	assert.Equal(t, "network5_load3_energy3", StateLayoutSignature())
}
