package engine

import (
	"fmt"
	"time"

	"github.com/sangeeta1998/het-sys/engine/trace"
)

// RunTotals is the explicit accumulator owned by the adaptation loop: every
// running counter the loop maintains lives here, reset only at construction
// and exposed through the final report rather than as ambient state.
type RunTotals struct {
	Ticks        int
	SkippedTicks int

	Adaptations           int
	SuccessfulAdaptations int
	ExecutorFailures      int
	SinkFailures          int
	DeferredPlacements    int

	SLOViolations  int
	PredictedRisks int
	HealingsOK     int
	HealingsFailed int

	Improvements trace.ImprovementDeltas
	TotalReward  float64
}

// AdaptationAccuracy is the fraction of applied adaptations the executor
// reported successful.
func (t *RunTotals) AdaptationAccuracy() float64 {
	if t.Adaptations == 0 {
		return 0
	}
	return float64(t.SuccessfulAdaptations) / float64(t.Adaptations)
}

// Resilience folds cumulative reliability improvement into [0,1].
func (t *RunTotals) Resilience() float64 {
	r := (t.Improvements.Reliability + 1) / 2
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}

// Convergence approximates learning progress as the fraction of a fixed
// exploration horizon the run has covered.
func (t *RunTotals) Convergence() float64 {
	const horizon = 50.0
	c := float64(t.Ticks) / horizon
	if c > 1 {
		return 1
	}
	return c
}

// Print displays the aggregated run totals at the end of a run.
func (t *RunTotals) Print(elapsed time.Duration) {
	fmt.Println("=== Adaptation Run Totals ===")
	fmt.Printf("Ticks                : %d (%d skipped)\n", t.Ticks, t.SkippedTicks)
	fmt.Printf("Adaptations          : %d (%d successful)\n", t.Adaptations, t.SuccessfulAdaptations)
	fmt.Printf("Adaptation accuracy  : %.2f\n", t.AdaptationAccuracy())
	fmt.Printf("Resilience           : %.2f\n", t.Resilience())
	fmt.Printf("Convergence          : %.2f\n", t.Convergence())
	fmt.Printf("SLO violations       : %d (%d predicted risks)\n", t.SLOViolations, t.PredictedRisks)
	fmt.Printf("Healings             : %d ok, %d failed\n", t.HealingsOK, t.HealingsFailed)
	fmt.Printf("Deferred placements  : %d\n", t.DeferredPlacements)
	fmt.Printf("Energy savings       : %.2f\n", t.Improvements.Energy)
	fmt.Printf("Latency improvements : %.2f\n", t.Improvements.Latency)
	fmt.Printf("Reliability gains    : %.2f\n", t.Improvements.Reliability)
	fmt.Printf("Total reward         : %.2f\n", t.TotalReward)
	fmt.Printf("Wall time            : %s\n", elapsed.Round(time.Millisecond))
}
