package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Candidate is a placement target with its offered capabilities. Candidates
// are owned by the external inventory; the scorer only reads them.
type Candidate struct {
	ID               string  `yaml:"id"`
	CPUHeadroom      float64 `yaml:"cpu_headroom"`      // 1 - current load, [0,1]
	EnergyEfficiency float64 `yaml:"energy_efficiency"` // [0,1]
	TrustLevel       int     `yaml:"trust_level"`       // 1 (low) .. 4 (critical)
	Bandwidth        float64 `yaml:"bandwidth"`         // link bandwidth, Mbps
	LinkLatency      float64 `yaml:"link_latency"`      // link latency, ms
}

// WorkloadUnit is the thing being placed, with its requirements.
type WorkloadUnit struct {
	ID                  string  `yaml:"id"`
	ExecTime            float64 `yaml:"exec_time"`            // ms
	LatencyBudget       float64 `yaml:"latency_budget"`       // ms, end to end
	EnergyRequirement   float64 `yaml:"energy_requirement"`   // (0,1]
	SecurityRequirement int     `yaml:"security_requirement"` // 1 .. 4
	BandwidthDemand     float64 `yaml:"bandwidth_demand"`     // Mbps
}

// Placement decision rationale tags.
const (
	RationaleOptimal  = "optimal"
	RationaleFallback = "fallback"
)

// fallbackConfidence replaces the computed score when the fallback path is
// taken.
const fallbackConfidence = 0.5

// CandidateScore is the scorer output for one (workload, candidate) pair.
type CandidateScore struct {
	CandidateID string
	Subscores   map[string]float64
	Total       float64
	Feasible    bool
}

// PlacementDecision is the selected target plus the evidence behind it.
// Created once per placement request and never mutated.
type PlacementDecision struct {
	WorkloadID string
	TargetID   string
	TotalScore float64
	Subscores  map[string]float64
	Rationale  string
	Confidence float64
}

// CriterionConfig describes a named placement criterion with a weight.
type CriterionConfig struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
}

// criterionFunc computes one sub-score in [0,1]; 1.0 is the best fit.
type criterionFunc func(w WorkloadUnit, c Candidate) float64

// validCriterionNames maps criterion names to validity. Unexported to
// prevent mutation.
var validCriterionNames = map[string]bool{
	"latency":   true,
	"energy":    true,
	"security":  true,
	"load":      true,
	"bandwidth": true,
}

// IsValidCriterion returns true if name is a recognized placement criterion.
func IsValidCriterion(name string) bool { return validCriterionNames[name] }

// ValidCriterionNames returns sorted valid criterion names.
func ValidCriterionNames() []string {
	names := make([]string, 0, len(validCriterionNames))
	for n := range validCriterionNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultCriterionConfigs returns the standard weight profile:
// latency 0.30, energy 0.25, security 0.20, load 0.15, bandwidth 0.10.
func DefaultCriterionConfigs() []CriterionConfig {
	return []CriterionConfig{
		{Name: "latency", Weight: 0.30},
		{Name: "energy", Weight: 0.25},
		{Name: "security", Weight: 0.20},
		{Name: "load", Weight: 0.15},
		{Name: "bandwidth", Weight: 0.10},
	}
}

// ParseCriterionConfigs parses a comma-separated string of "name:weight"
// pairs. Returns nil for empty input. Returns an error for unknown names,
// duplicates, non-positive weights, NaN, Inf, or malformed input.
func ParseCriterionConfigs(s string) ([]CriterionConfig, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	configs := make([]CriterionConfig, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid criterion config %q (expected name:weight)", strings.TrimSpace(part))
		}
		name := strings.TrimSpace(kv[0])
		if !IsValidCriterion(name) {
			return nil, fmt.Errorf("unknown criterion %q; valid: %s", name, strings.Join(ValidCriterionNames(), ", "))
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate criterion %q; each criterion may appear at most once", name)
		}
		seen[name] = true
		weight, err := strconv.ParseFloat(strings.TrimSpace(kv[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight for criterion %q: %w", name, err)
		}
		if weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
			return nil, fmt.Errorf("criterion %q weight must be a finite positive number, got %v", name, weight)
		}
		configs = append(configs, CriterionConfig{Name: name, Weight: weight})
	}
	return configs, nil
}

// normalizeCriterionWeights returns weights normalized to sum to 1.0.
func normalizeCriterionWeights(configs []CriterionConfig) ([]float64, error) {
	total := 0.0
	for _, c := range configs {
		total += c.Weight
	}
	if total <= 0 {
		return nil, fmt.Errorf("criterion weights sum to %f; must be positive", total)
	}
	weights := make([]float64, len(configs))
	for i, c := range configs {
		weights[i] = c.Weight / total
	}
	return weights, nil
}

func criterionByName(name string) criterionFunc {
	switch name {
	case "latency":
		return scoreLatencyFit
	case "energy":
		return scoreEnergyFit
	case "security":
		return scoreSecurityFit
	case "load":
		return scoreLoadHeadroom
	case "bandwidth":
		return scoreBandwidthFit
	default:
		panic(fmt.Sprintf("unknown criterion %q", name))
	}
}

// scoreLatencyFit rates how comfortably the workload's latency budget covers
// its execution time plus the candidate's link latency: min(1, budget/need).
func scoreLatencyFit(w WorkloadUnit, c Candidate) float64 {
	need := w.ExecTime + c.LinkLatency
	if need <= 0 {
		return 1.0
	}
	return math.Min(1.0, w.LatencyBudget/need)
}

// scoreEnergyFit rates the candidate's energy efficiency against the
// workload's requirement: min(1, supply/demand).
func scoreEnergyFit(w WorkloadUnit, c Candidate) float64 {
	if w.EnergyRequirement <= 0 {
		return 1.0
	}
	return math.Min(1.0, c.EnergyEfficiency/w.EnergyRequirement)
}

// scoreSecurityFit rates the candidate's trust tier against the workload's
// security requirement: min(1, trust/required).
func scoreSecurityFit(w WorkloadUnit, c Candidate) float64 {
	if w.SecurityRequirement <= 0 {
		return 1.0
	}
	return math.Min(1.0, float64(c.TrustLevel)/float64(w.SecurityRequirement))
}

// scoreLoadHeadroom rates free capacity directly: the candidate's headroom.
func scoreLoadHeadroom(_ WorkloadUnit, c Candidate) float64 {
	return math.Max(0.0, math.Min(1.0, c.CPUHeadroom))
}

// scoreBandwidthFit rates link bandwidth against demand: min(1, supply/demand).
func scoreBandwidthFit(w WorkloadUnit, c Candidate) float64 {
	if w.BandwidthDemand <= 0 {
		return 1.0
	}
	return math.Min(1.0, c.Bandwidth/w.BandwidthDemand)
}

// PlacementConfig configures the constraint-aware placement scorer.
type PlacementConfig struct {
	Criteria             []CriterionConfig `yaml:"criteria"`
	FeasibilityThreshold float64           `yaml:"feasibility_threshold"`
}

// DefaultPlacementConfig returns the standard criteria and threshold.
func DefaultPlacementConfig() PlacementConfig {
	return PlacementConfig{
		Criteria:             DefaultCriterionConfigs(),
		FeasibilityThreshold: 0.6,
	}
}

// Scorer computes weighted multi-criteria placement scores and selects the
// best feasible candidate. The normalized weight vector sums to 1.0 within
// 1e-9 for the scorer's lifetime.
type Scorer struct {
	names     []string
	criteria  []criterionFunc
	weights   []float64
	threshold float64
}

// NewScorer validates the config and returns a Scorer. Weights are
// normalized to sum to 1.0; an empty criteria list or a threshold outside
// (0, 1) is a configuration error.
func NewScorer(cfg PlacementConfig) (*Scorer, error) {
	if len(cfg.Criteria) == 0 {
		return nil, fmt.Errorf("placement: at least one criterion is required")
	}
	if cfg.FeasibilityThreshold <= 0 || cfg.FeasibilityThreshold >= 1 || math.IsNaN(cfg.FeasibilityThreshold) {
		return nil, fmt.Errorf("placement: feasibility threshold must be in (0, 1), got %v", cfg.FeasibilityThreshold)
	}
	for _, c := range cfg.Criteria {
		if !IsValidCriterion(c.Name) {
			return nil, fmt.Errorf("unknown criterion %q; valid: %s", c.Name, strings.Join(ValidCriterionNames(), ", "))
		}
	}
	weights, err := normalizeCriterionWeights(cfg.Criteria)
	if err != nil {
		return nil, err
	}
	sc := &Scorer{
		names:     make([]string, len(cfg.Criteria)),
		criteria:  make([]criterionFunc, len(cfg.Criteria)),
		weights:   weights,
		threshold: cfg.FeasibilityThreshold,
	}
	for i, c := range cfg.Criteria {
		sc.names[i] = c.Name
		sc.criteria[i] = criterionByName(c.Name)
	}
	return sc, nil
}

// Weights returns a copy of the normalized weight vector.
func (sc *Scorer) Weights() []float64 {
	out := make([]float64, len(sc.weights))
	copy(out, sc.weights)
	return out
}

// Score computes the per-criterion sub-scores and the weighted total for one
// candidate. A candidate is feasible iff its total exceeds the threshold.
func (sc *Scorer) Score(w WorkloadUnit, c Candidate) CandidateScore {
	subs := make(map[string]float64, len(sc.criteria))
	total := 0.0
	for i, fn := range sc.criteria {
		s := fn(w, c)
		subs[sc.names[i]] = s
		total += s * sc.weights[i]
	}
	return CandidateScore{
		CandidateID: c.ID,
		Subscores:   subs,
		Total:       total,
		Feasible:    total > sc.threshold,
	}
}

// SelectBest picks the feasible candidate with the strictly maximum total
// score, ties broken by candidate ID. When no candidate is feasible it falls
// back to the first enumerated candidate with a positive score, marked
// "fallback" with fixed confidence 0.5: the engine never refuses to place a
// workload while any candidate scores above zero. Returns false only when
// even the relaxed pass finds nothing.
func (sc *Scorer) SelectBest(w WorkloadUnit, candidates []Candidate) (PlacementDecision, bool) {
	var best *CandidateScore
	for i := range candidates {
		score := sc.Score(w, candidates[i])
		if !score.Feasible {
			continue
		}
		if best == nil || score.Total > best.Total ||
			(score.Total == best.Total && score.CandidateID < best.CandidateID) {
			s := score
			best = &s
		}
	}
	if best != nil {
		return PlacementDecision{
			WorkloadID: w.ID,
			TargetID:   best.CandidateID,
			TotalScore: best.Total,
			Subscores:  best.Subscores,
			Rationale:  RationaleOptimal,
			Confidence: best.Total,
		}, true
	}

	// Relaxed pass: original enumeration order, threshold dropped to zero.
	for i := range candidates {
		score := sc.Score(w, candidates[i])
		if score.Total > 0 {
			return PlacementDecision{
				WorkloadID: w.ID,
				TargetID:   score.CandidateID,
				TotalScore: score.Total,
				Subscores:  score.Subscores,
				Rationale:  RationaleFallback,
				Confidence: fallbackConfidence,
			}, true
		}
	}
	return PlacementDecision{}, false
}
