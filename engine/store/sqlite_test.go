package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangeeta1998/het-sys/engine"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "values.db"))
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_InitRequiresPath(t *testing.T) {
	s := NewSQLiteStore("")
	assert.Error(t, s.Init(context.Background()))
}

func TestSQLiteStore_InitIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Init(context.Background()))
}

func TestSQLiteStore_RequiresInit(t *testing.T) {
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "values.db"))
	_, err := s.LoadTable(context.Background(), "layout")
	assert.Error(t, err)
	assert.Error(t, s.SaveTable(context.Background(), "layout", nil))
}

func TestSQLiteStore_EmptyDatabaseLoadsNothing(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.LoadTable(context.Background(), engine.StateLayoutSignature())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sig := engine.StateLayoutSignature()

	saved := []engine.ValueEntry{
		{StateKey: "critical_high_low", Strategy: "emergency_mode", Value: -2.5},
		{StateKey: "excellent_low_high", Strategy: "latency_optimized", Value: 4.75},
		{StateKey: "fair_medium_medium", Strategy: "hybrid_adaptive", Value: 0},
	}
	require.NoError(t, s.SaveTable(ctx, sig, saved))

	loaded, err := s.LoadTable(ctx, sig)
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	byCell := make(map[string]float64, len(loaded))
	for _, e := range loaded {
		byCell[e.StateKey+"/"+e.Strategy] = e.Value
	}
	assert.Equal(t, -2.5, byCell["critical_high_low/emergency_mode"])
	assert.Equal(t, 4.75, byCell["excellent_low_high/latency_optimized"])
	assert.Equal(t, 0.0, byCell["fair_medium_medium/hybrid_adaptive"])
}

func TestSQLiteStore_SaveReplacesPreviousTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sig := engine.StateLayoutSignature()

	require.NoError(t, s.SaveTable(ctx, sig, []engine.ValueEntry{
		{StateKey: "fair_low_low", Strategy: "hybrid_adaptive", Value: 1},
		{StateKey: "fair_low_low", Strategy: "energy_efficient", Value: 2},
	}))
	require.NoError(t, s.SaveTable(ctx, sig, []engine.ValueEntry{
		{StateKey: "fair_low_low", Strategy: "hybrid_adaptive", Value: 9},
	}))

	loaded, err := s.LoadTable(ctx, sig)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 9.0, loaded[0].Value)
}

func TestSQLiteStore_LayoutMismatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTable(ctx, "network5_load3_energy3", []engine.ValueEntry{
		{StateKey: "fair_low_low", Strategy: "hybrid_adaptive", Value: 1},
	}))

	_, err := s.LoadTable(ctx, "network7_load3_energy3")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLayoutMismatch)
}

func TestSQLiteStore_RoundTripThroughValueStore(t *testing.T) {
	vs, err := engine.NewValueStore(engine.DefaultLearningConfig())
	require.NoError(t, err)
	state := engine.DiscreteState{Network: engine.NetworkPoor, Load: engine.LoadHigh, Energy: engine.EnergyLow}
	vs.Update(state, engine.StrategyEmergencyMode, 12, state)

	s := newTestStore(t)
	ctx := context.Background()
	sig := engine.StateLayoutSignature()
	require.NoError(t, s.SaveTable(ctx, sig, vs.Export()))

	loaded, err := s.LoadTable(ctx, sig)
	require.NoError(t, err)
	restored, err := engine.NewValueStore(engine.DefaultLearningConfig())
	require.NoError(t, err)
	require.NoError(t, restored.Import(loaded))
	assert.Equal(t, vs.Value(state, engine.StrategyEmergencyMode), restored.Value(state, engine.StrategyEmergencyMode))
}
