// Package engine provides the adaptive decision core for the het-sys
// orchestration control loop.
//
// # Reading Guide
//
// Start with these three files to understand the decision kernel:
//   - snapshot.go: MetricsSnapshot (one tick's telemetry) and DiscreteState
//   - discretize.go: breakpoint-driven mapping from telemetry to states
//   - loop.go: the adaptation loop that ties every component together per tick
//
// # Architecture
//
// The engine package defines the collaborator interfaces and the core
// components; supporting implementations live in sub-packages:
//   - engine/trace/: pure record types, bounded history, run summaries
//   - engine/telemetry/: synthetic metrics source with YAML scenarios
//   - engine/store/: SQLite persistence for the learned value table
//
// Each tick the loop pulls one MetricsSnapshot, discretizes it, asks the
// Selector (strategy mode) or the placement Scorer (placement mode) for a
// decision, applies it through the external ActionExecutor, converts the
// observed outcome into a scalar reward, updates the ValueStore, runs the SLO
// Monitor and the healing Dispatcher, and emits one AdaptationRecord.
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - MetricsSource: produce one snapshot per tick (may block, cancellable)
//   - ActionExecutor: apply a decision and report the observed outcome
//   - ReportSink: receive per-tick adaptation records (fire-and-forget)
//   - SecurityAttestor: supply the opaque security posture and threat level
//   - Inventory: supply the workload unit and candidate targets per tick
package engine
