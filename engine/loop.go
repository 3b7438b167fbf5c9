package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sangeeta1998/het-sys/engine/trace"
)

// Mode selects which decision procedure the loop drives each tick.
type Mode string

const (
	// ModeStrategy runs the epsilon-greedy policy selector and learns.
	ModeStrategy Mode = "strategy"
	// ModePlacement runs the constraint-aware placement scorer.
	ModePlacement Mode = "placement"
)

// LoopState tracks where in the tick cycle the loop is. Purely
// observational: the loop is single-threaded and the states exist for
// introspection and tests, not for synchronization.
type LoopState int

const (
	LoopIdle LoopState = iota
	LoopTicking
	LoopDeciding
	LoopApplying
	LoopEvaluating
	LoopUpdating
	LoopStopped
)

func (s LoopState) String() string {
	switch s {
	case LoopIdle:
		return "idle"
	case LoopTicking:
		return "ticking"
	case LoopDeciding:
		return "deciding"
	case LoopApplying:
		return "applying"
	case LoopEvaluating:
		return "evaluating"
	case LoopUpdating:
		return "updating"
	case LoopStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// emergencyThreatLevel is the threat level that, combined with a critical
// network tier, bypasses epsilon-greedy and forces emergency mode.
const emergencyThreatLevel = 4

// LoopConfig holds the adaptation loop parameters. All are fixed at
// construction; there is no runtime reconfiguration.
type LoopConfig struct {
	Mode         Mode          `yaml:"mode"`
	TickInterval time.Duration `yaml:"tick_interval"`
	// MaxTicks stops the loop after that many ticks; 0 runs until the
	// context is cancelled.
	MaxTicks        int           `yaml:"max_ticks"`
	SourceTimeout   time.Duration `yaml:"source_timeout"`
	ExecutorTimeout time.Duration `yaml:"executor_timeout"`
	HistoryWindow   int           `yaml:"history_window"`
}

// DefaultLoopConfig returns the standard loop parameters.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		Mode:            ModeStrategy,
		TickInterval:    time.Second,
		MaxTicks:        0,
		SourceTimeout:   500 * time.Millisecond,
		ExecutorTimeout: 500 * time.Millisecond,
		HistoryWindow:   trace.DefaultWindow,
	}
}

// Validate returns an error if the config is invalid.
func (c LoopConfig) Validate() error {
	if c.Mode != ModeStrategy && c.Mode != ModePlacement {
		return fmt.Errorf("loop: mode must be %q or %q, got %q", ModeStrategy, ModePlacement, c.Mode)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("loop: tick interval must be positive, got %v", c.TickInterval)
	}
	if c.SourceTimeout <= 0 || c.ExecutorTimeout <= 0 {
		return fmt.Errorf("loop: source and executor timeouts must be positive")
	}
	if c.MaxTicks < 0 {
		return fmt.Errorf("loop: max ticks must be non-negative, got %d", c.MaxTicks)
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("loop: history window must be non-negative, got %d", c.HistoryWindow)
	}
	return nil
}

// LoopDeps collects the components and collaborators the loop drives.
// Sink defaults to LogSink when nil; Attestor is optional.
type LoopDeps struct {
	Discretizer *Discretizer
	Store       *ValueStore
	Selector    *Selector
	Scorer      *Scorer
	Monitor     *Monitor
	Predictor   PredictorConfig
	Dispatcher  *Dispatcher
	Source      MetricsSource
	Executor    ActionExecutor
	Sink        ReportSink
	Attestor    SecurityAttestor
	Inventory   Inventory
	// Reference is the operating point objective normalization compares
	// against. Zero value falls back to DefaultReference.
	Reference MetricsSnapshot
}

// DefaultReference returns the nominal operating point: 25ms latency,
// 45Mbps bandwidth.
func DefaultReference() MetricsSnapshot {
	return MetricsSnapshot{Latency: 25, Bandwidth: 45}
}

// Loop is the adaptation orchestrator: a single-threaded, tick-based control
// loop. Exactly one tick is in flight at a time; cancellation is honored at
// tick boundaries, never mid-tick.
type Loop struct {
	cfg   LoopConfig
	runID string

	disc       *Discretizer
	store      *ValueStore
	selector   *Selector
	scorer     *Scorer
	monitor    *Monitor
	predictor  PredictorConfig
	dispatcher *Dispatcher

	source    MetricsSource
	executor  ActionExecutor
	sink      ReportSink
	attestor  SecurityAttestor
	inventory Inventory

	ref     MetricsSnapshot
	history *trace.History
	totals  *RunTotals

	state LoopState
	tick  int64
}

// NewLoop validates configuration and wiring and returns a ready loop.
// Configuration errors here are the fatal kind: they must surface at startup
// and never at runtime.
func NewLoop(cfg LoopConfig, deps LoopDeps) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := deps.Predictor.Validate(); err != nil {
		return nil, err
	}
	if deps.Discretizer == nil || deps.Monitor == nil || deps.Dispatcher == nil {
		return nil, fmt.Errorf("loop: discretizer, monitor and dispatcher are required")
	}
	if deps.Source == nil || deps.Executor == nil {
		return nil, fmt.Errorf("loop: metrics source and action executor are required")
	}
	switch cfg.Mode {
	case ModeStrategy:
		if deps.Store == nil || deps.Selector == nil {
			return nil, fmt.Errorf("loop: strategy mode requires a value store and selector")
		}
	case ModePlacement:
		if deps.Scorer == nil || deps.Inventory == nil {
			return nil, fmt.Errorf("loop: placement mode requires a scorer and inventory")
		}
	}
	sink := deps.Sink
	if sink == nil {
		sink = LogSink{}
	}
	ref := deps.Reference
	if ref == (MetricsSnapshot{}) {
		ref = DefaultReference()
	}
	return &Loop{
		cfg:        cfg,
		runID:      uuid.NewString(),
		disc:       deps.Discretizer,
		store:      deps.Store,
		selector:   deps.Selector,
		scorer:     deps.Scorer,
		monitor:    deps.Monitor,
		predictor:  deps.Predictor,
		dispatcher: deps.Dispatcher,
		source:     deps.Source,
		executor:   deps.Executor,
		sink:       sink,
		attestor:   deps.Attestor,
		inventory:  deps.Inventory,
		ref:        ref,
		history:    trace.NewHistory(cfg.HistoryWindow),
		totals:     &RunTotals{},
		state:      LoopIdle,
	}, nil
}

// RunID returns the unique identifier stamped on every record of this run.
func (l *Loop) RunID() string { return l.runID }

// State returns the loop's current lifecycle state.
func (l *Loop) State() LoopState { return l.state }

// Totals returns the loop's accumulator. Read it after Run returns.
func (l *Loop) Totals() *RunTotals { return l.totals }

// History returns the bounded record window.
func (l *Loop) History() *trace.History { return l.history }

// Run drives ticks until the context is cancelled or MaxTicks is reached.
// The first tick runs immediately; subsequent ticks follow the interval.
// In-flight ticks always complete before the loop stops.
func (l *Loop) Run(ctx context.Context) *RunTotals {
	ticker := time.NewTicker(l.cfg.TickInterval)
	defer ticker.Stop()

	l.state = LoopTicking
	logrus.Infof("adaptation loop %s starting in %s mode", l.runID, l.cfg.Mode)
	for {
		l.tick++
		l.runTick(ctx)
		if l.cfg.MaxTicks > 0 && int(l.tick) >= l.cfg.MaxTicks {
			break
		}
		select {
		case <-ctx.Done():
			l.state = LoopStopped
			logrus.Infof("[tick %07d] adaptation loop stopped: %v", l.tick, ctx.Err())
			return l.totals
		case <-ticker.C:
		}
	}
	l.state = LoopStopped
	logrus.Infof("[tick %07d] adaptation loop finished", l.tick)
	return l.totals
}

// Tick runs exactly one tick. Exposed for callers that drive the cadence
// themselves (and for tests); Run uses it internally via runTick.
func (l *Loop) Tick(ctx context.Context) {
	l.tick++
	l.runTick(ctx)
}

func (l *Loop) runTick(ctx context.Context) {
	defer func() { l.state = LoopTicking }()
	l.totals.Ticks++
	now := time.Now()

	srcCtx, cancel := context.WithTimeout(ctx, l.cfg.SourceTimeout)
	snap, err := l.source.Next(srcCtx)
	cancel()
	if err != nil {
		l.totals.SkippedTicks++
		skippedTicksTotal.Inc()
		logrus.Warnf("[tick %07d] metrics source failed, skipping tick: %v", l.tick, err)
		l.emit(trace.AdaptationRecord{
			RunID:     l.runID,
			Tick:      l.tick,
			Mode:      string(l.cfg.Mode),
			Degraded:  true,
			Timestamp: now,
		})
		return
	}
	if l.attestor != nil {
		snap.SecurityPosture, snap.ThreatLevel = l.attestor.Posture()
	}

	state := l.disc.Discretize(snap)
	rec := trace.AdaptationRecord{
		RunID:       l.runID,
		Tick:        l.tick,
		StateKey:    state.Key(),
		Mode:        string(l.cfg.Mode),
		Latency:     snap.Latency,
		CPULoad:     snap.CPULoad,
		ThreatLevel: snap.ThreatLevel,
		Timestamp:   now,
	}

	l.state = LoopDeciding
	switch l.cfg.Mode {
	case ModeStrategy:
		l.strategyTick(ctx, snap, state, now, &rec)
	case ModePlacement:
		l.placementTick(ctx, snap, state, now, &rec)
	}

	l.monitorTick(ctx, snap, state, now, &rec)
	l.emit(rec)
	l.history.Append(rec)
}

func (l *Loop) strategyTick(ctx context.Context, snap MetricsSnapshot, state DiscreteState, now time.Time, rec *trace.AdaptationRecord) {
	var sd StrategyDecision
	if state.Network == NetworkCritical && snap.ThreatLevel >= emergencyThreatLevel {
		sd = StrategyDecision{
			Strategy:            StrategyEmergencyMode,
			Confidence:          confidenceCap,
			ExpectedImprovement: ExpectedImprovement(StrategyEmergencyMode, state),
			Reasoning:           "emergency override: critical network tier under active threat",
			Timestamp:           now,
		}
	} else {
		sd = l.selector.Select(state, now)
	}
	rec.Strategy = sd.Strategy.String()
	rec.Explored = sd.Explored
	rec.ExpectedImprovement = sd.ExpectedImprovement
	rec.Confidence = sd.Confidence
	logrus.Debugf("[tick %07d] state=%s %s", l.tick, state.Key(), sd.Reasoning)

	out := l.apply(ctx, Decision{
		ID:         newDecisionID(),
		Kind:       DecisionStrategy,
		State:      state,
		Strategy:   sd.Strategy,
		Confidence: sd.Confidence,
	})

	l.state = LoopEvaluating
	reward := ComputeReward(out, state)
	// Single-snapshot-per-tick model: the next state is recomputed from the
	// same tick's snapshot, no lookahead.
	next := l.disc.Discretize(snap)

	l.state = LoopUpdating
	l.store.Update(state, sd.Strategy, reward, next)

	l.totals.Adaptations++
	if out.Success {
		l.totals.SuccessfulAdaptations++
	}
	addDeltas(&l.totals.Improvements, out.Deltas)
	l.totals.TotalReward += reward
	adaptationsTotal.WithLabelValues(sd.Strategy.String(), resultLabel(out.Success)).Inc()
	tickReward.Set(reward)

	rec.Success = out.Success
	rec.Reward = reward
	rec.Deltas = out.Deltas
}

func (l *Loop) placementTick(ctx context.Context, snap MetricsSnapshot, state DiscreteState, now time.Time, rec *trace.AdaptationRecord) {
	w, candidates := l.inventory.Next()
	pd, ok := l.scorer.SelectBest(w, candidates)
	if !ok {
		// Soft failure: the workload is deferred to the next tick.
		l.totals.DeferredPlacements++
		logrus.Warnf("[tick %07d] no feasible placement for workload %s among %d candidates; deferring",
			l.tick, w.ID, len(candidates))
		return
	}

	rec.PlacementTarget = pd.TargetID
	rec.PlacementScore = pd.TotalScore
	rec.Rationale = pd.Rationale
	rec.Confidence = pd.Confidence
	placementsTotal.WithLabelValues(pd.Rationale).Inc()

	out := l.apply(ctx, Decision{
		ID:         newDecisionID(),
		Kind:       DecisionPlacement,
		State:      state,
		Placement:  &pd,
		Confidence: pd.Confidence,
	})

	l.state = LoopEvaluating
	reward := ComputeReward(out, state)
	l.totals.Adaptations++
	if out.Success {
		l.totals.SuccessfulAdaptations++
	}
	addDeltas(&l.totals.Improvements, out.Deltas)
	l.totals.TotalReward += reward
	tickReward.Set(reward)

	rec.Success = out.Success
	rec.Reward = reward
	rec.Deltas = out.Deltas
}

// apply hands one decision to the executor under the executor timeout.
// Executor errors count as failures and never abort the tick.
func (l *Loop) apply(ctx context.Context, d Decision) Outcome {
	l.state = LoopApplying
	execCtx, cancel := context.WithTimeout(ctx, l.cfg.ExecutorTimeout)
	defer cancel()
	out, err := l.executor.Apply(execCtx, d)
	if err != nil {
		l.totals.ExecutorFailures++
		logrus.Warnf("[tick %07d] executor failed for decision %s: %v", l.tick, d.ID, err)
		return Outcome{}
	}
	return out
}

func (l *Loop) monitorTick(ctx context.Context, snap MetricsSnapshot, state DiscreteState, now time.Time, rec *trace.AdaptationRecord) {
	values := ObjectiveValues(snap, l.ref)
	violations := l.monitor.Observe(now, values)
	l.totals.SLOViolations += len(violations)
	for _, v := range violations {
		sloViolationsTotal.WithLabelValues(v.Objective, "actual").Inc()
	}

	if l.predictor.PredictDegradation(l.history.Last(l.predictor.Window), snap.ThreatLevel) {
		th, _ := l.monitor.Threshold(ObjectiveLatency)
		violations = append(violations, trace.ViolationRecord{
			Objective:    string(ObjectiveLatency),
			CurrentValue: values[ObjectiveLatency],
			Threshold:    th,
			Predicted:    true,
			Timestamp:    now,
		})
		l.totals.PredictedRisks++
		sloViolationsTotal.WithLabelValues(string(ObjectiveLatency), "predicted").Inc()
	}
	if len(violations) == 0 {
		return
	}

	healCtx, cancel := context.WithTimeout(ctx, l.cfg.ExecutorTimeout)
	defer cancel()
	healings := l.dispatcher.Dispatch(healCtx, l.executor, state, violations, now)
	for _, h := range healings {
		if h.Success {
			l.totals.HealingsOK++
		} else {
			l.totals.HealingsFailed++
		}
		healingActionsTotal.WithLabelValues(h.Action, resultLabel(h.Success)).Inc()
	}
	rec.Violations = violations
	rec.Healings = healings
}

func (l *Loop) emit(rec trace.AdaptationRecord) {
	if err := l.sink.Emit(rec); err != nil {
		l.totals.SinkFailures++
		logrus.Warnf("[tick %07d] report sink failed: %v", rec.Tick, err)
	}
}
