package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangeeta1998/het-sys/engine/trace"
)

func TestSLOConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultSLOConfig().Validate())
	assert.Error(t, SLOConfig{}.Validate())
	assert.Error(t, SLOConfig{Thresholds: map[Objective]float64{ObjectiveLatency: 1.5}}.Validate())
	assert.Error(t, SLOConfig{Thresholds: map[Objective]float64{ObjectiveLatency: -0.1}}.Validate())
}

func TestMonitor_ObserveTripsBelowThreshold(t *testing.T) {
	m, err := NewMonitor(SLOConfig{Thresholds: map[Objective]float64{ObjectiveLatency: 0.7}})
	require.NoError(t, err)

	now := time.Now()
	for i, v := range []float64{0.8, 0.75} {
		violations := m.Observe(now.Add(time.Duration(i)*time.Second), map[Objective]float64{ObjectiveLatency: v})
		assert.Empty(t, violations)
	}

	third := now.Add(2 * time.Second)
	violations := m.Observe(third, map[Objective]float64{ObjectiveLatency: 0.5})
	require.Len(t, violations, 1)
	assert.Equal(t, "latency", violations[0].Objective)
	assert.Equal(t, 0.5, violations[0].CurrentValue)
	assert.Equal(t, 0.7, violations[0].Threshold)
	assert.Equal(t, 1, violations[0].ViolationCount)
	assert.Equal(t, third, violations[0].Timestamp)
	assert.False(t, violations[0].Predicted)
}

func TestMonitor_ValueAtThresholdDoesNotTrip(t *testing.T) {
	m, err := NewMonitor(SLOConfig{Thresholds: map[Objective]float64{ObjectiveEnergy: 0.5}})
	require.NoError(t, err)
	violations := m.Observe(time.Now(), map[Objective]float64{ObjectiveEnergy: 0.5})
	assert.Empty(t, violations)
}

func TestMonitor_ViolationCountAccumulatesPerGuard(t *testing.T) {
	m, err := NewMonitor(DefaultSLOConfig())
	require.NoError(t, err)

	low := map[Objective]float64{ObjectiveLatency: 0.1, ObjectiveThroughput: 0.1}
	for i := 0; i < 3; i++ {
		m.Observe(time.Now(), low)
	}
	violations := m.Observe(time.Now(), low)
	require.Len(t, violations, 2)
	for _, v := range violations {
		assert.Equal(t, 4, v.ViolationCount)
	}
}

func TestMonitor_AbsentObjectiveCannotTrip(t *testing.T) {
	m, err := NewMonitor(SLOConfig{Thresholds: map[Objective]float64{
		ObjectiveLatency:  0.7,
		ObjectiveAccuracy: 0.8,
	}})
	require.NoError(t, err)

	violations := m.Observe(time.Now(), map[Objective]float64{ObjectiveLatency: 0.9})
	assert.Empty(t, violations)
}

func TestMonitor_Threshold(t *testing.T) {
	m, err := NewMonitor(DefaultSLOConfig())
	require.NoError(t, err)

	th, ok := m.Threshold(ObjectiveLatency)
	assert.True(t, ok)
	assert.Equal(t, 0.7, th)

	_, ok = m.Threshold(Objective("unmonitored"))
	assert.False(t, ok)
}

func TestObjectiveValues_ReferenceNormalization(t *testing.T) {
	ref := DefaultReference()
	snap := MetricsSnapshot{
		Latency:         50, // twice the 25ms reference
		Bandwidth:       22.5,
		PacketLoss:      0.04,
		Energy:          0.8,
		SecurityPosture: 0.9,
	}
	values := ObjectiveValues(snap, ref)
	assert.InDelta(t, 0.5, values[ObjectiveLatency], 1e-9)
	assert.InDelta(t, 0.5, values[ObjectiveThroughput], 1e-9)
	assert.InDelta(t, 0.8, values[ObjectiveAvailability], 1e-9)
	assert.InDelta(t, 0.8, values[ObjectiveEnergy], 1e-9)
	assert.InDelta(t, 0.9, values[ObjectiveAccuracy], 1e-9)
}

func TestObjectiveValues_ClampedToUnitRange(t *testing.T) {
	values := ObjectiveValues(MetricsSnapshot{
		Latency:    1, // far better than reference
		Bandwidth:  1000,
		PacketLoss: 0.9,
		Energy:     2,
	}, DefaultReference())
	for obj, v := range values {
		assert.GreaterOrEqual(t, v, 0.0, "objective %s", obj)
		assert.LessOrEqual(t, v, 1.0, "objective %s", obj)
	}
	assert.Equal(t, 1.0, values[ObjectiveLatency])
	assert.Equal(t, 0.0, values[ObjectiveAvailability])
}

func TestObjectiveValues_ZeroLatencyIsPerfect(t *testing.T) {
	values := ObjectiveValues(MetricsSnapshot{}, DefaultReference())
	assert.Equal(t, 1.0, values[ObjectiveLatency])
}

func TestPredictorConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultPredictorConfig().Validate())
	assert.Error(t, PredictorConfig{Window: 1, LatencySlope: 5, CPUSlope: 0.1, ThreatCount: 3}.Validate())
	assert.Error(t, PredictorConfig{Window: 3, LatencySlope: 0, CPUSlope: 0.1, ThreatCount: 3}.Validate())
	assert.Error(t, PredictorConfig{Window: 3, LatencySlope: 5, CPUSlope: 0.1, ThreatCount: 0}.Validate())
}

func latencyTrendRecords(latencies ...float64) []trace.AdaptationRecord {
	records := make([]trace.AdaptationRecord, len(latencies))
	for i, l := range latencies {
		records[i] = trace.AdaptationRecord{Latency: l, CPULoad: 0.5}
	}
	return records
}

func TestPredictDegradation_LatencyTrend(t *testing.T) {
	cfg := DefaultPredictorConfig()

	// (80 - 30) / 3 is about 16.7 ms per tick, above the 5 ms slope threshold.
	assert.True(t, cfg.PredictDegradation(latencyTrendRecords(30, 55, 80), 1))

	// (42 - 30) / 3 = 4 ms per tick stays below the threshold.
	assert.False(t, cfg.PredictDegradation(latencyTrendRecords(30, 36, 42), 1))

	// Improving latency never predicts degradation.
	assert.False(t, cfg.PredictDegradation(latencyTrendRecords(80, 55, 30), 1))
}

func TestPredictDegradation_CPUTrend(t *testing.T) {
	cfg := DefaultPredictorConfig()
	records := []trace.AdaptationRecord{
		{Latency: 25, CPULoad: 0.30},
		{Latency: 25, CPULoad: 0.50},
		{Latency: 25, CPULoad: 0.70}, // (0.70 - 0.30) / 3 > 0.10
	}
	assert.True(t, cfg.PredictDegradation(records, 1))
}

func TestPredictDegradation_ThreatLevelShortCircuits(t *testing.T) {
	cfg := DefaultPredictorConfig()
	// Even with no history at all, an active threat predicts degradation.
	assert.True(t, cfg.PredictDegradation(nil, 3))
	assert.True(t, cfg.PredictDegradation(nil, 5))
	assert.False(t, cfg.PredictDegradation(nil, 2))
}

func TestPredictDegradation_RequiresFullWindow(t *testing.T) {
	cfg := DefaultPredictorConfig()
	assert.False(t, cfg.PredictDegradation(latencyTrendRecords(30, 200), 1))
}

func TestPredictDegradation_UsesOnlyRecentWindow(t *testing.T) {
	cfg := DefaultPredictorConfig()
	// The old spike is outside the window of 3; the recent window is flat.
	records := latencyTrendRecords(300, 25, 25, 25)
	assert.False(t, cfg.PredictDegradation(records, 1))
}
