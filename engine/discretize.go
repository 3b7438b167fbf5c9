package engine

import (
	"fmt"
	"math"
)

// Breakpoints holds the per-dimension cut points used by the Discretizer.
// All slices are fixed at construction. Boundaries are half-open [lo, hi):
// a value exactly on a cut point falls into the bucket above it.
type Breakpoints struct {
	// Latency cuts in ms, strictly ascending, len 4. Lower latency is a
	// better network tier; a value at or above the last cut is critical.
	Latency []float64 `yaml:"latency"`
	// Bandwidth cuts in Mbps, strictly descending, len 4. Higher bandwidth
	// is a better network tier.
	Bandwidth []float64 `yaml:"bandwidth"`
	// PacketLoss cuts as ratios, strictly ascending, len 4.
	PacketLoss []float64 `yaml:"packet_loss"`
	// Load cuts in [0,1], strictly ascending, len 2 (low/medium/high).
	Load []float64 `yaml:"load"`
	// Energy cuts in [0,1], strictly ascending, len 2 (low/medium/high).
	Energy []float64 `yaml:"energy"`
}

// DefaultBreakpoints returns the standard discretization cut points.
func DefaultBreakpoints() Breakpoints {
	return Breakpoints{
		Latency:    []float64{30, 50, 100, 200},
		Bandwidth:  []float64{80, 60, 40, 20},
		PacketLoss: []float64{0.02, 0.05, 0.1, 0.2},
		Load:       []float64{0.3, 0.7},
		Energy:     []float64{0.4, 0.7},
	}
}

// Validate returns an error if any dimension has the wrong number of cuts,
// a non-finite cut, or cuts out of order. Called once at startup;
// misconfiguration here is fatal, never a runtime concern.
func (bp Breakpoints) Validate() error {
	if err := checkCuts("latency", bp.Latency, NumNetworkTiers-1, true); err != nil {
		return err
	}
	if err := checkCuts("bandwidth", bp.Bandwidth, NumNetworkTiers-1, false); err != nil {
		return err
	}
	if err := checkCuts("packet_loss", bp.PacketLoss, NumNetworkTiers-1, true); err != nil {
		return err
	}
	if err := checkCuts("load", bp.Load, NumLoadTiers-1, true); err != nil {
		return err
	}
	if err := checkCuts("energy", bp.Energy, NumEnergyTiers-1, true); err != nil {
		return err
	}
	return nil
}

func checkCuts(dim string, cuts []float64, want int, ascending bool) error {
	if len(cuts) != want {
		return fmt.Errorf("breakpoints: dimension %q needs %d cuts, got %d", dim, want, len(cuts))
	}
	for i, c := range cuts {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("breakpoints: dimension %q cut %d is not finite", dim, i)
		}
		if i == 0 {
			continue
		}
		if ascending && cuts[i] <= cuts[i-1] {
			return fmt.Errorf("breakpoints: dimension %q cuts must be strictly ascending", dim)
		}
		if !ascending && cuts[i] >= cuts[i-1] {
			return fmt.Errorf("breakpoints: dimension %q cuts must be strictly descending", dim)
		}
	}
	return nil
}

// Discretizer maps continuous telemetry to a DiscreteState. It is a pure
// function of its breakpoints: total, deterministic, and side-effect free.
type Discretizer struct {
	bp Breakpoints
}

// NewDiscretizer validates the breakpoints and returns a Discretizer.
func NewDiscretizer(bp Breakpoints) (*Discretizer, error) {
	if err := bp.Validate(); err != nil {
		return nil, err
	}
	return &Discretizer{bp: bp}, nil
}

// Discretize maps a snapshot to its state. The network tier is the worst of
// three independent classifications (latency, bandwidth, packet loss): a
// single degraded signal is enough to drag the tier down.
func (d *Discretizer) Discretize(snap MetricsSnapshot) DiscreteState {
	latTier := NetworkTier(NumNetworkTiers - 1 - bucketAscending(snap.Latency, d.bp.Latency))
	bwTier := NetworkTier(bucketDescending(snap.Bandwidth, d.bp.Bandwidth))
	lossTier := NetworkTier(NumNetworkTiers - 1 - bucketAscending(snap.PacketLoss, d.bp.PacketLoss))

	network := latTier
	if bwTier < network {
		network = bwTier
	}
	if lossTier < network {
		network = lossTier
	}

	load := (snap.CPULoad + snap.MemoryLoad) / 2
	return DiscreteState{
		Network: network,
		Load:    LoadTier(bucketAscending(load, d.bp.Load)),
		Energy:  EnergyTier(bucketAscending(snap.Energy, d.bp.Energy)),
	}
}

// bucketAscending returns the index of the half-open interval
// [cuts[i-1], cuts[i]) that v falls into. A value exactly on a cut lands in
// the bucket above it (v >= cut counts).
func bucketAscending(v float64, cuts []float64) int {
	idx := 0
	for _, c := range cuts {
		if v >= c {
			idx++
		}
	}
	return idx
}

// bucketDescending is the mirror for dimensions where larger values are
// better: the result counts cuts strictly below v, so a value exactly on a
// cut lands in the bucket below it (the worse side), matching the half-open
// rule on the metric axis.
func bucketDescending(v float64, cuts []float64) int {
	idx := 0
	for _, c := range cuts {
		if v > c {
			idx++
		}
	}
	return idx
}
