package engine

import "github.com/sangeeta1998/het-sys/engine/trace"

// Reward shaping constants. The improvement terms dominate only when the
// deltas are large; the success bonus keeps the sign of the signal stable.
const (
	rewardSuccessBonus   = 10.0
	rewardFailurePenalty = 5.0

	rewardLatencyWeight     = 20.0
	rewardEnergyWeight      = 15.0
	rewardReliabilityWeight = 25.0

	rewardCriticalPenalty = 10.0
	rewardPoorPenalty     = 5.0
)

// ComputeReward converts one tick's outcome into the scalar learning signal:
// a fixed bonus or penalty for the declared result, weighted improvement
// deltas, and a penalty scaled by how degraded the network tier is.
func ComputeReward(out Outcome, state DiscreteState) float64 {
	var reward float64
	if out.Success {
		reward += rewardSuccessBonus
	} else {
		reward -= rewardFailurePenalty
	}

	reward += out.Deltas.Latency * rewardLatencyWeight
	reward += out.Deltas.Energy * rewardEnergyWeight
	reward += out.Deltas.Reliability * rewardReliabilityWeight

	switch state.Network {
	case NetworkCritical:
		reward -= rewardCriticalPenalty
	case NetworkPoor:
		reward -= rewardPoorPenalty
	}
	return reward
}

// used by loop.go to fold outcome deltas into running totals
func addDeltas(total *trace.ImprovementDeltas, d trace.ImprovementDeltas) {
	total.Latency += d.Latency
	total.Energy += d.Energy
	total.Reliability += d.Reliability
}
