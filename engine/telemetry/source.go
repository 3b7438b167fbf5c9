package telemetry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/sangeeta1998/het-sys/engine"
)

// SyntheticSource implements engine.MetricsSource with seeded pseudo-random
// telemetry. All randomness comes from the telemetry subsystem of the
// partitioned RNG: the emitted snapshot sequence is a pure function of the
// seed and the scenario.
type SyntheticSource struct {
	spec ScenarioSpec
	rng  *rand.Rand
}

// NewSyntheticSource creates a source for the scenario.
func NewSyntheticSource(spec ScenarioSpec, rng *engine.PartitionedRNG) *SyntheticSource {
	return &SyntheticSource{
		spec: spec,
		rng:  rng.ForSubsystem(engine.SubsystemTelemetry),
	}
}

// Next implements engine.MetricsSource. It never blocks beyond the ctx
// check: synthetic telemetry is always available.
func (s *SyntheticSource) Next(ctx context.Context) (engine.MetricsSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return engine.MetricsSnapshot{}, err
	}

	b, j := s.spec.Baseline, s.spec.Jitter
	snap := engine.MetricsSnapshot{
		Latency:         math.Max(1, b.Latency+s.rng.NormFloat64()*j.Latency),
		Bandwidth:       math.Max(1, b.Bandwidth+s.rng.NormFloat64()*j.Bandwidth),
		PacketLoss:      clamp01(b.PacketLoss + s.rng.NormFloat64()*j.PacketLoss),
		CPULoad:         clamp01(b.CPULoad + s.rng.NormFloat64()*j.CPULoad),
		MemoryLoad:      clamp01(b.MemoryLoad + s.rng.NormFloat64()*j.MemoryLoad),
		Energy:          clamp01(b.Energy + s.rng.NormFloat64()*j.Energy),
		SecurityPosture: b.Posture,
		ThreatLevel:     b.Threat,
		Timestamp:       time.Now(),
	}

	// Adverse episodes, drawn after the jitter so their draws stay in a
	// fixed position in the stream.
	if s.rng.Float64() < s.spec.Episodes.DegradationProb {
		snap.Latency *= 3
		snap.Bandwidth *= 0.3
		if snap.ThreatLevel < 3 {
			snap.ThreatLevel = 3
		}
	}
	if s.rng.Float64() < s.spec.Episodes.LoadBurstProb {
		snap.CPULoad = clamp01(snap.CPULoad + 0.30)
		snap.MemoryLoad = clamp01(snap.MemoryLoad + 0.25)
	}
	return snap, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// StaticInventory implements engine.Inventory with a fixed workload unit and
// candidate set, for CLI placement-mode runs.
type StaticInventory struct {
	Workload   engine.WorkloadUnit
	Candidates []engine.Candidate
}

// Next implements engine.Inventory.
func (s *StaticInventory) Next() (engine.WorkloadUnit, []engine.Candidate) {
	return s.Workload, s.Candidates
}

// DefaultInventory returns a small heterogeneous fleet: a well-provisioned
// server-class node, a balanced edge node, and a constrained embedded node.
func DefaultInventory() *StaticInventory {
	return &StaticInventory{
		Workload: engine.WorkloadUnit{
			ID:                  "control-loop",
			ExecTime:            12,
			LatencyBudget:       50,
			EnergyRequirement:   0.7,
			SecurityRequirement: 3,
			BandwidthDemand:     20,
		},
		Candidates: []engine.Candidate{
			{ID: "x86-server-01", CPUHeadroom: 0.6, EnergyEfficiency: 0.7, TrustLevel: 3, Bandwidth: 400, LinkLatency: 18},
			{ID: "arm-edge-01", CPUHeadroom: 0.75, EnergyEfficiency: 0.85, TrustLevel: 2, Bandwidth: 120, LinkLatency: 8},
			{ID: "riscv-iot-01", CPUHeadroom: 0.85, EnergyEfficiency: 0.9, TrustLevel: 1, Bandwidth: 40, LinkLatency: 4},
		},
	}
}

// StaticAttestor implements engine.SecurityAttestor with fixed values, for
// runs without a live attestation service.
type StaticAttestor struct {
	Score  float64
	Threat int
}

// Posture implements engine.SecurityAttestor.
func (a StaticAttestor) Posture() (float64, int) {
	return a.Score, a.Threat
}
