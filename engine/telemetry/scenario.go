// Package telemetry provides the synthetic metrics source used by CLI runs:
// seeded gaussian variation around a configurable operating point, with
// occasional degradation and load-burst episodes. It exists so the engine
// can be exercised end to end without a live environment; production
// deployments supply their own engine.MetricsSource.
package telemetry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BaselineSpec is the nominal operating point the generator varies around.
type BaselineSpec struct {
	Latency    float64 `yaml:"latency"`     // ms
	Bandwidth  float64 `yaml:"bandwidth"`   // Mbps
	PacketLoss float64 `yaml:"packet_loss"` // ratio
	CPULoad    float64 `yaml:"cpu_load"`    // [0,1]
	MemoryLoad float64 `yaml:"memory_load"` // [0,1]
	Energy     float64 `yaml:"energy"`      // [0,1]
	Posture    float64 `yaml:"posture"`     // [0,1]
	Threat     int     `yaml:"threat"`      // 1..5
}

// JitterSpec holds the gaussian standard deviations applied per tick.
type JitterSpec struct {
	Latency    float64 `yaml:"latency"`
	Bandwidth  float64 `yaml:"bandwidth"`
	PacketLoss float64 `yaml:"packet_loss"`
	CPULoad    float64 `yaml:"cpu_load"`
	MemoryLoad float64 `yaml:"memory_load"`
	Energy     float64 `yaml:"energy"`
}

// EpisodeSpec holds per-tick probabilities for adverse episodes.
type EpisodeSpec struct {
	// Degradation triples latency, cuts bandwidth to a third, and raises
	// the threat level to at least 3.
	DegradationProb float64 `yaml:"degradation_prob"`
	// LoadBurst adds 0.30 CPU load and 0.25 memory load.
	LoadBurstProb float64 `yaml:"load_burst_prob"`
}

// ScenarioSpec is the top-level synthetic telemetry configuration, loaded
// from YAML via LoadScenarioSpec.
type ScenarioSpec struct {
	Name     string       `yaml:"name"`
	Baseline BaselineSpec `yaml:"baseline"`
	Jitter   JitterSpec   `yaml:"jitter"`
	Episodes EpisodeSpec  `yaml:"episodes"`
}

// DefaultScenarioSpec returns the standard industrial-floor scenario.
func DefaultScenarioSpec() ScenarioSpec {
	return ScenarioSpec{
		Name: "default",
		Baseline: BaselineSpec{
			Latency:    25,
			Bandwidth:  45,
			PacketLoss: 0.01,
			CPULoad:    0.45,
			MemoryLoad: 0.60,
			Energy:     0.75,
			Posture:    0.85,
			Threat:     1,
		},
		Jitter: JitterSpec{
			Latency:    10,
			Bandwidth:  15,
			PacketLoss: 0.005,
			CPULoad:    0.20,
			MemoryLoad: 0.15,
			Energy:     0.05,
		},
		Episodes: EpisodeSpec{
			DegradationProb: 0.10,
			LoadBurstProb:   0.15,
		},
	}
}

// Validate returns an error for out-of-range baseline or episode values.
func (s ScenarioSpec) Validate() error {
	b := s.Baseline
	if b.Latency <= 0 || b.Bandwidth <= 0 {
		return fmt.Errorf("scenario %q: baseline latency and bandwidth must be positive", s.Name)
	}
	for name, v := range map[string]float64{
		"packet_loss": b.PacketLoss,
		"cpu_load":    b.CPULoad,
		"memory_load": b.MemoryLoad,
		"energy":      b.Energy,
		"posture":     b.Posture,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("scenario %q: baseline %s must be in [0, 1], got %v", s.Name, name, v)
		}
	}
	if b.Threat < 1 || b.Threat > 5 {
		return fmt.Errorf("scenario %q: baseline threat must be in 1..5, got %d", s.Name, b.Threat)
	}
	for name, p := range map[string]float64{
		"degradation_prob": s.Episodes.DegradationProb,
		"load_burst_prob":  s.Episodes.LoadBurstProb,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("scenario %q: %s must be in [0, 1], got %v", s.Name, name, p)
		}
	}
	return nil
}

// LoadScenarioSpec reads and validates a scenario YAML file.
func LoadScenarioSpec(path string) (ScenarioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ScenarioSpec{}, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	spec := DefaultScenarioSpec()
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return ScenarioSpec{}, fmt.Errorf("scenario: parse %s: %w", path, err)
	}
	if err := spec.Validate(); err != nil {
		return ScenarioSpec{}, err
	}
	return spec, nil
}
