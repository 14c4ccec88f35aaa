package metrics

import (
	"github.com/msxvi/strategy/core/events"
	"github.com/msxvi/strategy/core/objective"
)

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordRun(rec RunRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordTrace forwards traces to the sinks that support them.
func (m *MultiSink) RecordTrace(runID string, points []objective.TracePoint) error {
	for _, s := range m.Sinks {
		if r, ok := s.(TraceRecorder); ok {
			if err := r.RecordTrace(runID, points); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordProgress forwards progress events to the sinks that support them.
func (m *MultiSink) RecordProgress(ev events.Progress) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ProgressRecorder); ok {
			if err := r.RecordProgress(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
