package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/sangeeta1998/het-sys/engine/trace"
)

// LogSink writes one structured log line per adaptation record. The default
// sink for CLI runs.
type LogSink struct{}

// Emit implements ReportSink.
func (LogSink) Emit(r trace.AdaptationRecord) error {
	fields := logrus.Fields{
		"tick":   r.Tick,
		"state":  r.StateKey,
		"mode":   r.Mode,
		"reward": r.Reward,
	}
	switch {
	case r.Degraded:
		fields["degraded"] = true
	case r.Mode == "placement":
		fields["target"] = r.PlacementTarget
		fields["rationale"] = r.Rationale
		fields["score"] = r.PlacementScore
	default:
		fields["strategy"] = r.Strategy
		fields["confidence"] = r.Confidence
		fields["success"] = r.Success
	}
	if len(r.Violations) > 0 {
		fields["violations"] = len(r.Violations)
	}
	logrus.WithFields(fields).Info("adaptation record")
	return nil
}

// MultiSink fans one record out to several sinks. The first error is
// returned after every sink has been offered the record.
type MultiSink []ReportSink

// Emit implements ReportSink.
func (m MultiSink) Emit(r trace.AdaptationRecord) error {
	var first error
	for _, s := range m {
		if err := s.Emit(r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// HistorySink appends records to a bounded trace history, making the window
// available for post-run summaries.
type HistorySink struct {
	History *trace.History
}

// Emit implements ReportSink.
func (h HistorySink) Emit(r trace.AdaptationRecord) error {
	h.History.Append(r)
	return nil
}
