// Package events defines the events published by the optimizer during a
// search. Subscribers (metrics collectors, progress logs) consume them via
// the internal event bus.
package events

// Progress reports the state of an ongoing optimization run.
type Progress struct {
	RunID       string
	Iteration   int
	Evaluations int
	BestValue   float64
	Feasible    bool
}
