package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sangeeta1998/het-sys/engine"
	"github.com/sangeeta1998/het-sys/engine/store"
	"github.com/sangeeta1998/het-sys/engine/telemetry"
	"github.com/sangeeta1998/het-sys/engine/trace"
)

var (
	// Run control
	seed         int64         // Seed for all pseudo-random subsystems
	ticks        int           // Number of ticks to run (0 = until interrupted)
	tickInterval time.Duration // Interval between ticks
	logLevel     string        // Log verbosity level
	mode         string        // Decision mode: strategy or placement

	// Learning parameters
	alpha   float64 // Q-learning rate
	gamma   float64 // Discount factor
	epsilon float64 // Exploration rate

	// Placement parameters
	criteria             string  // Comma-separated name:weight criterion list
	feasibilityThreshold float64 // Minimum composite score for feasibility

	// SLO / healing parameters
	preferScaleForLatency bool // Answer latency violations with scale instead of migrate
	historyWindow         int  // Bounded adaptation history window

	// Collaborator wiring
	scenarioPath string // YAML telemetry scenario file
	storePath    string // SQLite value-table path (empty = no persistence)
	metricsAddr  string // Prometheus listen address (empty = disabled)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "het-sys",
	Short: "Adaptive decision engine for orchestration control loops",
}

// runCmd executes the adaptation loop using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the adaptation loop",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rng := engine.NewPartitionedRNG(engine.NewRunKey(seed))

		disc, err := engine.NewDiscretizer(engine.DefaultBreakpoints())
		if err != nil {
			logrus.Fatalf("discretizer: %v", err)
		}

		valueStore, err := engine.NewValueStore(engine.LearningConfig{Alpha: alpha, Gamma: gamma})
		if err != nil {
			logrus.Fatalf("value store: %v", err)
		}
		persistence := loadPersisted(ctx, valueStore)

		selector, err := engine.NewSelector(engine.SelectorConfig{Epsilon: epsilon}, valueStore, rng)
		if err != nil {
			logrus.Fatalf("selector: %v", err)
		}

		placementCfg := engine.DefaultPlacementConfig()
		placementCfg.FeasibilityThreshold = feasibilityThreshold
		if criteria != "" {
			configs, err := engine.ParseCriterionConfigs(criteria)
			if err != nil {
				logrus.Fatalf("criteria: %v", err)
			}
			placementCfg.Criteria = configs
		}
		scorer, err := engine.NewScorer(placementCfg)
		if err != nil {
			logrus.Fatalf("placement scorer: %v", err)
		}

		monitor, err := engine.NewMonitor(engine.DefaultSLOConfig())
		if err != nil {
			logrus.Fatalf("slo monitor: %v", err)
		}

		scenario := telemetry.DefaultScenarioSpec()
		if scenarioPath != "" {
			scenario, err = telemetry.LoadScenarioSpec(scenarioPath)
			if err != nil {
				logrus.Fatalf("scenario: %v", err)
			}
		}

		loopCfg := engine.DefaultLoopConfig()
		loopCfg.Mode = engine.Mode(mode)
		loopCfg.TickInterval = tickInterval
		loopCfg.MaxTicks = ticks
		loopCfg.HistoryWindow = historyWindow

		loop, err := engine.NewLoop(loopCfg, engine.LoopDeps{
			Discretizer: disc,
			Store:       valueStore,
			Selector:    selector,
			Scorer:      scorer,
			Monitor:     monitor,
			Predictor:   engine.DefaultPredictorConfig(),
			Dispatcher:  engine.NewDispatcher(engine.DispatcherConfig{PreferScaleForLatency: preferScaleForLatency}),
			Source:      telemetry.NewSyntheticSource(scenario, rng),
			Executor:    engine.NewSimExecutor(rng),
			Sink:        engine.LogSink{},
			Inventory:   telemetry.DefaultInventory(),
		})
		if err != nil {
			logrus.Fatalf("adaptation loop: %v", err)
		}

		if metricsAddr != "" {
			go serveMetrics(metricsAddr)
		}

		logrus.Infof("Starting adaptation loop: mode=%s seed=%d ticks=%d interval=%s scenario=%s",
			mode, seed, ticks, tickInterval, scenario.Name)
		startTime := time.Now()

		totals := loop.Run(ctx)
		totals.Print(time.Since(startTime))
		printSummary(trace.Summarize(loop.History().All()))

		savePersisted(persistence, valueStore)
		logrus.Info("Adaptation run complete.")
	},
}

// loadPersisted restores the value table from the SQLite store, if one is
// configured. Returns the open store for the post-run save, or nil.
func loadPersisted(ctx context.Context, valueStore *engine.ValueStore) *store.SQLiteStore {
	if storePath == "" {
		return nil
	}
	st := store.NewSQLiteStore(storePath)
	if err := st.Init(ctx); err != nil {
		logrus.Fatalf("value table store: %v", err)
	}
	entries, err := st.LoadTable(ctx, engine.StateLayoutSignature())
	if err != nil {
		logrus.Fatalf("value table store: %v", err)
	}
	if len(entries) > 0 {
		if err := valueStore.Import(entries); err != nil {
			logrus.Fatalf("value table store: %v", err)
		}
		logrus.Infof("Restored %d value-table entries from %s", len(entries), storePath)
	}
	return st
}

// savePersisted writes the value table back and closes the store.
func savePersisted(st *store.SQLiteStore, valueStore *engine.ValueStore) {
	if st == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.SaveTable(saveCtx, engine.StateLayoutSignature(), valueStore.Export()); err != nil {
		logrus.Errorf("saving value table: %v", err)
	}
	if err := st.Close(); err != nil {
		logrus.Errorf("closing value table store: %v", err)
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logrus.Infof("Serving Prometheus metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logrus.Errorf("metrics endpoint: %v", err)
	}
}

func printSummary(s *trace.RunSummary) {
	logrus.Infof("Recent window: %d ticks, success rate %.2f, mean reward %.2f (p50 %.2f, p90 %.2f)",
		s.TotalTicks, s.SuccessRate, s.MeanReward, s.P50Reward, s.P90Reward)
	for strategy, n := range s.StrategyDistribution {
		logrus.Infof("  strategy %-20s chosen %d times", strategy, n)
	}
	for target, n := range s.TargetDistribution {
		logrus.Infof("  target   %-20s chosen %d times", target, n)
	}
	if s.ViolationCount > 0 || s.PredictedCount > 0 {
		logrus.Infof("  violations: %d actual, %d predicted; healings: %d ok, %d failed",
			s.ViolationCount, s.PredictedCount, s.HealingSuccesses, s.HealingFailures)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for deterministic pseudo-random subsystems")
	runCmd.Flags().IntVar(&ticks, "ticks", 30, "Number of ticks to run (0 = until interrupted)")
	runCmd.Flags().DurationVar(&tickInterval, "tick-interval", time.Second, "Interval between ticks")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&mode, "mode", "strategy", "Decision mode (strategy, placement)")

	// Learning configs
	runCmd.Flags().Float64Var(&alpha, "alpha", 0.1, "Q-learning rate in (0, 1]")
	runCmd.Flags().Float64Var(&gamma, "gamma", 0.9, "Discount factor in [0, 1)")
	runCmd.Flags().Float64Var(&epsilon, "epsilon", 0.1, "Exploration rate in [0, 1]")

	// Placement configs
	runCmd.Flags().StringVar(&criteria, "criteria", "", "Comma-separated criterion weights, e.g. latency:0.3,energy:0.25")
	runCmd.Flags().Float64Var(&feasibilityThreshold, "feasibility-threshold", 0.6, "Minimum composite score for a feasible placement")

	// SLO / healing configs
	runCmd.Flags().BoolVar(&preferScaleForLatency, "prefer-scale-for-latency", false, "Mitigate latency violations with scale instead of migrate")
	runCmd.Flags().IntVar(&historyWindow, "history-window", trace.DefaultWindow, "Bounded adaptation history window")

	// Collaborator wiring
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "YAML telemetry scenario file (empty = built-in default)")
	runCmd.Flags().StringVar(&storePath, "store", "", "SQLite path for value-table persistence (empty = no persistence)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus listen address, e.g. :9090 (empty = disabled)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
