package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/sangeeta1998/het-sys/engine/trace"
)

// Objective names one monitored service-level objective. Guard values are
// normalized so that higher is better; a guard trips when its observed value
// drops below its threshold.
type Objective string

const (
	ObjectiveLatency      Objective = "latency"
	ObjectiveThroughput   Objective = "throughput"
	ObjectiveAccuracy     Objective = "accuracy"
	ObjectiveAvailability Objective = "availability"
	ObjectiveEnergy       Objective = "energy"
)

// Objectives returns the monitored objective set in a fixed order.
func Objectives() []Objective {
	return []Objective{
		ObjectiveLatency,
		ObjectiveThroughput,
		ObjectiveAccuracy,
		ObjectiveAvailability,
		ObjectiveEnergy,
	}
}

// SLOGuard tracks one objective: its threshold, the latest observation, and
// the violation history. ViolationCount is monotonically non-decreasing for
// the process lifetime.
type SLOGuard struct {
	Objective      Objective
	Threshold      float64
	CurrentValue   float64
	ViolationCount int
	LastViolation  time.Time
}

// SLOConfig holds per-objective thresholds in [0,1].
type SLOConfig struct {
	Thresholds map[Objective]float64 `yaml:"thresholds"`
}

// DefaultSLOConfig returns the standard thresholds.
func DefaultSLOConfig() SLOConfig {
	return SLOConfig{Thresholds: map[Objective]float64{
		ObjectiveLatency:      0.7,
		ObjectiveThroughput:   0.6,
		ObjectiveAccuracy:     0.8,
		ObjectiveAvailability: 0.9,
		ObjectiveEnergy:       0.5,
	}}
}

// Validate returns an error for thresholds outside [0,1] or unknown
// objectives.
func (c SLOConfig) Validate() error {
	if len(c.Thresholds) == 0 {
		return fmt.Errorf("slo: at least one objective threshold is required")
	}
	known := make(map[Objective]bool, len(Objectives()))
	for _, o := range Objectives() {
		known[o] = true
	}
	for obj, th := range c.Thresholds {
		if !known[obj] {
			return fmt.Errorf("slo: unknown objective %q", obj)
		}
		if th < 0 || th > 1 || math.IsNaN(th) {
			return fmt.Errorf("slo: threshold for %q must be in [0, 1], got %v", obj, th)
		}
	}
	return nil
}

// Monitor evaluates every guard once per tick. Guards are independent of
// each other; the only cross-tick state is each guard's violation history.
type Monitor struct {
	guards []*SLOGuard
}

// NewMonitor builds one guard per configured objective, ordered by the
// canonical objective list for deterministic reporting.
func NewMonitor(cfg SLOConfig) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Monitor{}
	for _, obj := range Objectives() {
		th, ok := cfg.Thresholds[obj]
		if !ok {
			continue
		}
		m.guards = append(m.guards, &SLOGuard{Objective: obj, Threshold: th})
	}
	return m, nil
}

// Guards returns the live guard instances (monitor retains ownership).
func (m *Monitor) Guards() []*SLOGuard { return m.guards }

// Threshold returns the configured threshold for an objective, false when
// the objective is not monitored.
func (m *Monitor) Threshold(obj Objective) (float64, bool) {
	for _, g := range m.guards {
		if g.Objective == obj {
			return g.Threshold, true
		}
	}
	return 0, false
}

// Observe records one tick's objective values and returns a ViolationRecord
// for every guard whose value fell below its threshold. Objectives absent
// from values keep their previous observation and cannot trip.
func (m *Monitor) Observe(now time.Time, values map[Objective]float64) []trace.ViolationRecord {
	var violations []trace.ViolationRecord
	for _, g := range m.guards {
		v, ok := values[g.Objective]
		if !ok {
			continue
		}
		g.CurrentValue = v
		if v >= g.Threshold {
			continue
		}
		g.ViolationCount++
		g.LastViolation = now
		violations = append(violations, trace.ViolationRecord{
			Objective:      string(g.Objective),
			CurrentValue:   v,
			Threshold:      g.Threshold,
			ViolationCount: g.ViolationCount,
			Timestamp:      now,
		})
	}
	return violations
}

// ObjectiveValues derives the normalized objective observations for one
// snapshot. The latency and throughput objectives compare the snapshot
// against the reference operating point; availability follows packet loss;
// energy tracks the remaining budget; accuracy is stood in for by the
// attested security posture, the only quality signal the engine receives.
func ObjectiveValues(snap MetricsSnapshot, ref MetricsSnapshot) map[Objective]float64 {
	values := map[Objective]float64{
		ObjectiveAvailability: clamp01(1 - 5*snap.PacketLoss),
		ObjectiveEnergy:       clamp01(snap.Energy),
		ObjectiveAccuracy:     clamp01(snap.SecurityPosture),
	}
	if snap.Latency > 0 {
		values[ObjectiveLatency] = clamp01(ref.Latency / snap.Latency)
	} else {
		values[ObjectiveLatency] = 1
	}
	if ref.Bandwidth > 0 {
		values[ObjectiveThroughput] = clamp01(snap.Bandwidth / ref.Bandwidth)
	} else {
		values[ObjectiveThroughput] = 1
	}
	return values
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// PredictorConfig holds the trend thresholds for pre-emptive violation
// detection.
type PredictorConfig struct {
	Window       int     `yaml:"window"`        // history entries inspected
	LatencySlope float64 `yaml:"latency_slope"` // ms per tick
	CPUSlope     float64 `yaml:"cpu_slope"`     // load fraction per tick
	ThreatCount  int     `yaml:"threat_count"`  // threat level at or above
}

// DefaultPredictorConfig returns the standard trend thresholds.
func DefaultPredictorConfig() PredictorConfig {
	return PredictorConfig{Window: 3, LatencySlope: 5.0, CPUSlope: 0.10, ThreatCount: 3}
}

// Validate returns an error if the config is invalid.
func (c PredictorConfig) Validate() error {
	if c.Window < 2 {
		return fmt.Errorf("predictor: window must be at least 2, got %d", c.Window)
	}
	if c.LatencySlope <= 0 || c.CPUSlope <= 0 {
		return fmt.Errorf("predictor: slope thresholds must be positive")
	}
	if c.ThreatCount < 1 {
		return fmt.Errorf("predictor: threat count must be at least 1, got %d", c.ThreatCount)
	}
	return nil
}

// PredictDegradation inspects the most recent history entries and reports
// whether a violation is likely before one occurs: the linear trend
// (last − first, over the window) of latency or CPU load exceeds its slope
// threshold, or the current threat level reaches the count threshold.
// Returns false until the history holds a full window.
func (c PredictorConfig) PredictDegradation(recent []trace.AdaptationRecord, currentThreat int) bool {
	if currentThreat >= c.ThreatCount {
		return true
	}
	if len(recent) < c.Window {
		return false
	}
	window := recent[len(recent)-c.Window:]
	first, last := window[0], window[len(window)-1]
	latencyTrend := (last.Latency - first.Latency) / float64(c.Window)
	cpuTrend := (last.CPULoad - first.CPULoad) / float64(c.Window)
	return latencyTrend > c.LatencySlope || cpuTrend > c.CPUSlope
}
