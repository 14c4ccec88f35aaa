package metrics

import (
	"time"

	"github.com/msxvi/strategy/core/events"
	"github.com/msxvi/strategy/core/objective"
)

// RunRecord summarizes one finished optimization run.
type RunRecord struct {
	RunID       string
	Strategy    string
	Objective   string
	Value       float64
	DistanceM   float64
	ElapsedS    float64
	FinalSoC    float64
	Feasible    bool
	Violations  int
	Evaluations int
	Runtime     time.Duration
	Time        time.Time
}

// MetricsSink records finished runs for observability purposes.
type MetricsSink interface {
	RecordRun(rec RunRecord) error
}

// TraceRecorder is implemented by sinks able to persist the per-segment
// trace of the winning trajectory.
type TraceRecorder interface {
	RecordTrace(runID string, points []objective.TracePoint) error
}

// ProgressRecorder is implemented by sinks able to record in-flight search
// progress events.
type ProgressRecorder interface {
	RecordProgress(ev events.Progress) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunRecord) error { return nil }

func (NopSink) RecordTrace(string, []objective.TracePoint) error { return nil }

func (NopSink) RecordProgress(events.Progress) error { return nil }
