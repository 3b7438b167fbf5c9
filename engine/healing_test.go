package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangeeta1998/het-sys/engine/trace"
)

// scriptedExecutor returns canned outcomes (or errors) in order and records
// every decision it was handed.
type scriptedExecutor struct {
	outcomes []Outcome
	errs     []error
	applied  []Decision
}

func (e *scriptedExecutor) Apply(_ context.Context, d Decision) (Outcome, error) {
	i := len(e.applied)
	e.applied = append(e.applied, d)
	var err error
	if i < len(e.errs) {
		err = e.errs[i]
	}
	var out Outcome
	if i < len(e.outcomes) {
		out = e.outcomes[i]
	}
	return out, err
}

func TestDispatcher_ActionFor(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{})
	assert.Equal(t, MitigationMigrate, d.ActionFor(ObjectiveLatency))
	assert.Equal(t, MitigationRestart, d.ActionFor(ObjectiveAvailability))
	assert.Equal(t, MitigationOptimizePlacement, d.ActionFor(ObjectiveEnergy))
	assert.Equal(t, MitigationFallback, d.ActionFor(ObjectiveThroughput))
	assert.Equal(t, MitigationFallback, d.ActionFor(ObjectiveAccuracy))

	scaled := NewDispatcher(DispatcherConfig{PreferScaleForLatency: true})
	assert.Equal(t, MitigationScale, scaled.ActionFor(ObjectiveLatency))
	assert.Equal(t, MitigationRestart, scaled.ActionFor(ObjectiveAvailability))
}

func TestDispatcher_DispatchOneActionPerViolation(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{})
	exec := &scriptedExecutor{outcomes: []Outcome{{Success: true}, {Success: false}}}
	state := DiscreteState{Network: NetworkPoor, Load: LoadHigh, Energy: EnergyLow}
	now := time.Now()

	violations := []trace.ViolationRecord{
		{Objective: "latency", CurrentValue: 0.4, Threshold: 0.7},
		{Objective: "availability", CurrentValue: 0.5, Threshold: 0.9},
	}
	outcomes := d.Dispatch(context.Background(), exec, state, violations, now)
	require.Len(t, outcomes, 2)

	assert.Equal(t, "latency", outcomes[0].Objective)
	assert.Equal(t, "migrate", outcomes[0].Action)
	assert.True(t, outcomes[0].Success)
	assert.True(t, outcomes[0].Addressed)

	assert.Equal(t, "availability", outcomes[1].Objective)
	assert.Equal(t, "restart", outcomes[1].Action)
	assert.False(t, outcomes[1].Success)
	assert.False(t, outcomes[1].Addressed)

	require.Len(t, exec.applied, 2)
	for _, dec := range exec.applied {
		assert.Equal(t, DecisionMitigation, dec.Kind)
		assert.Equal(t, state, dec.State)
		assert.NotEmpty(t, dec.ID)
	}
	assert.Equal(t, MitigationMigrate, exec.applied[0].Mitigation)
	assert.Equal(t, MitigationRestart, exec.applied[1].Mitigation)
}

func TestDispatcher_ExecutorErrorRecordsFailure(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{})
	exec := &scriptedExecutor{
		outcomes: []Outcome{{Success: true}, {Success: true}},
		errs:     []error{errors.New("environment unreachable"), nil},
	}
	violations := []trace.ViolationRecord{
		{Objective: "latency"},
		{Objective: "energy"},
	}
	outcomes := d.Dispatch(context.Background(), exec, DiscreteState{}, violations, time.Now())
	require.Len(t, outcomes, 2)
	assert.False(t, outcomes[0].Success)
	assert.True(t, outcomes[1].Success)
}

func TestDispatcher_PredictedViolationNeverAddressed(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{})
	exec := &scriptedExecutor{outcomes: []Outcome{{Success: true}}}
	violations := []trace.ViolationRecord{{Objective: "latency", Predicted: true}}

	outcomes := d.Dispatch(context.Background(), exec, DiscreteState{}, violations, time.Now())
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Success)
	assert.False(t, outcomes[0].Addressed)
}
