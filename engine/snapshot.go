package engine

import (
	"fmt"
	"time"
)

// MetricsSnapshot is one tick's worth of telemetry about the managed
// environment. Produced once per tick by the MetricsSource and never mutated
// afterwards. SecurityPosture and ThreatLevel come from the SecurityAttestor
// when one is wired; otherwise the source's own values are used as-is.
type MetricsSnapshot struct {
	Latency    float64 // network round-trip latency, ms
	Bandwidth  float64 // available bandwidth, Mbps
	PacketLoss float64 // packet loss ratio in [0,1]

	CPULoad    float64 // aggregate CPU load in [0,1]
	MemoryLoad float64 // aggregate memory load in [0,1]
	Energy     float64 // remaining energy budget in [0,1]

	SecurityPosture float64 // opaque capability score in [0,1]
	ThreatLevel     int     // 1 (quiet) .. 5 (active attack)

	Timestamp time.Time
}

// NetworkTier is the discretized network quality. Ordering matters: lower
// values are worse, and tier comparisons throughout the engine rely on it.
type NetworkTier int

const (
	NetworkCritical NetworkTier = iota
	NetworkPoor
	NetworkFair
	NetworkGood
	NetworkExcellent
)

// NumNetworkTiers is the size of the network dimension of the state space.
const NumNetworkTiers = 5

func (t NetworkTier) String() string {
	switch t {
	case NetworkCritical:
		return "critical"
	case NetworkPoor:
		return "poor"
	case NetworkFair:
		return "fair"
	case NetworkGood:
		return "good"
	case NetworkExcellent:
		return "excellent"
	default:
		return fmt.Sprintf("network(%d)", int(t))
	}
}

// LoadTier is the discretized system load level.
type LoadTier int

const (
	LoadLow LoadTier = iota
	LoadMedium
	LoadHigh
)

// NumLoadTiers is the size of the load dimension of the state space.
const NumLoadTiers = 3

func (t LoadTier) String() string {
	switch t {
	case LoadLow:
		return "low"
	case LoadMedium:
		return "medium"
	case LoadHigh:
		return "high"
	default:
		return fmt.Sprintf("load(%d)", int(t))
	}
}

// EnergyTier is the discretized remaining energy budget.
type EnergyTier int

const (
	EnergyLow EnergyTier = iota
	EnergyMedium
	EnergyHigh
)

// NumEnergyTiers is the size of the energy dimension of the state space.
const NumEnergyTiers = 3

func (t EnergyTier) String() string {
	switch t {
	case EnergyLow:
		return "low"
	case EnergyMedium:
		return "medium"
	case EnergyHigh:
		return "high"
	default:
		return fmt.Sprintf("energy(%d)", int(t))
	}
}

// DiscreteState identifies one row of the value table. It is a value object:
// equality and map-key behavior are structural. The dimension order
// (network, load, energy) is part of the contract: reordering it changes
// Key() and invalidates persisted value tables.
type DiscreteState struct {
	Network NetworkTier
	Load    LoadTier
	Energy  EnergyTier
}

// Key returns the canonical string form, e.g. "critical_high_low".
func (s DiscreteState) Key() string {
	return s.Network.String() + "_" + s.Load.String() + "_" + s.Energy.String()
}

// AllStates enumerates the full cartesian product of discretization tiers in
// a fixed order. The value store is built from exactly this enumeration, so
// every state a Discretizer can produce has a row from construction on.
func AllStates() []DiscreteState {
	states := make([]DiscreteState, 0, NumNetworkTiers*NumLoadTiers*NumEnergyTiers)
	for n := 0; n < NumNetworkTiers; n++ {
		for l := 0; l < NumLoadTiers; l++ {
			for e := 0; e < NumEnergyTiers; e++ {
				states = append(states, DiscreteState{
					Network: NetworkTier(n),
					Load:    LoadTier(l),
					Energy:  EnergyTier(e),
				})
			}
		}
	}
	return states
}

// StateLayoutSignature describes the dimension order and tier counts of the
// state space. Persisted value tables carry it so a table saved under one
// layout is never loaded into another.
func StateLayoutSignature() string {
	return fmt.Sprintf("network%d_load%d_energy%d", NumNetworkTiers, NumLoadTiers, NumEnergyTiers)
}
