package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the adaptation loop. Registered on the
// default registry; the CLI decides whether to serve it.
var (
	adaptationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hetsys_adaptations_total",
			Help: "Adaptation decisions applied, by strategy and result",
		},
		[]string{"strategy", "result"},
	)

	placementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hetsys_placements_total",
			Help: "Placement decisions, by rationale",
		},
		[]string{"rationale"},
	)

	sloViolationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hetsys_slo_violations_total",
			Help: "SLO guard violations, by objective and kind",
		},
		[]string{"objective", "kind"},
	)

	healingActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hetsys_healing_actions_total",
			Help: "Self-healing actions dispatched, by action and result",
		},
		[]string{"action", "result"},
	)

	skippedTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hetsys_skipped_ticks_total",
			Help: "Ticks skipped due to transient collaborator failures",
		},
	)

	tickReward = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hetsys_tick_reward",
			Help: "Reward computed for the most recent tick",
		},
	)
)

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
