package trace

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RunSummary aggregates statistics over a sequence of adaptation records.
type RunSummary struct {
	TotalTicks    int
	DegradedTicks int

	SuccessCount int
	SuccessRate  float64

	MeanReward   float64
	StdDevReward float64
	P50Reward    float64
	P90Reward    float64

	ExploreCount int

	StrategyDistribution map[string]int
	TargetDistribution   map[string]int

	ViolationCount        int
	PredictedCount        int
	ViolationsByObjective map[string]int
	HealingSuccesses      int
	HealingFailures       int
}

// Summarize computes aggregate statistics from a record slice. Safe for nil
// or empty input (returns zero-value fields).
func Summarize(records []AdaptationRecord) *RunSummary {
	s := &RunSummary{
		StrategyDistribution:  make(map[string]int),
		TargetDistribution:    make(map[string]int),
		ViolationsByObjective: make(map[string]int),
	}
	if len(records) == 0 {
		return s
	}

	rewards := make([]float64, 0, len(records))
	for _, r := range records {
		s.TotalTicks++
		if r.Degraded {
			s.DegradedTicks++
			continue
		}
		rewards = append(rewards, r.Reward)
		if r.Success {
			s.SuccessCount++
		}
		if r.Explored {
			s.ExploreCount++
		}
		if r.Strategy != "" {
			s.StrategyDistribution[r.Strategy]++
		}
		if r.PlacementTarget != "" {
			s.TargetDistribution[r.PlacementTarget]++
		}
		for _, v := range r.Violations {
			if v.Predicted {
				s.PredictedCount++
				continue
			}
			s.ViolationCount++
			s.ViolationsByObjective[v.Objective]++
		}
		for _, h := range r.Healings {
			if h.Success {
				s.HealingSuccesses++
			} else {
				s.HealingFailures++
			}
		}
	}

	acted := s.TotalTicks - s.DegradedTicks
	if acted > 0 {
		s.SuccessRate = float64(s.SuccessCount) / float64(acted)
	}
	if len(rewards) > 0 {
		s.MeanReward = stat.Mean(rewards, nil)
		if len(rewards) > 1 {
			s.StdDevReward = stat.StdDev(rewards, nil)
		}
		sort.Float64s(rewards)
		s.P50Reward = stat.Quantile(0.5, stat.Empirical, rewards, nil)
		s.P90Reward = stat.Quantile(0.9, stat.Empirical, rewards, nil)
	}
	return s
}
