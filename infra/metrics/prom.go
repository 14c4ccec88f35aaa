package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/msxvi/strategy/core/events"
	coremetrics "github.com/msxvi/strategy/core/metrics"
)

// PromSink records optimization runs in Prometheus metrics.
type PromSink struct {
	runs        *prometheus.CounterVec
	evaluations prometheus.Counter
	duration    *prometheus.HistogramVec
	best        prometheus.Gauge
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The scrape endpoint is served separately, see StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "optimization_runs_total",
		Help: "Total number of optimization runs",
	}, []string{"strategy", "objective", "feasible"})
	evaluations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "objective_evaluations_total",
		Help: "Total number of objective function evaluations",
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optimization_run_seconds",
		Help:    "Wall-clock duration of optimization runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})
	best := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "optimization_best_objective",
		Help: "Objective value of the most recent best candidate",
	})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(evaluations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			evaluations = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(best); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			best = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{runs: runs, evaluations: evaluations, duration: duration, best: best}, nil
}

// RecordRun increments the run counter and records the run duration.
func (s *PromSink) RecordRun(rec coremetrics.RunRecord) error {
	s.runs.WithLabelValues(rec.Strategy, rec.Objective, strconv.FormatBool(rec.Feasible)).Inc()
	s.evaluations.Add(float64(rec.Evaluations))
	s.duration.WithLabelValues(rec.Strategy).Observe(rec.Runtime.Seconds())
	s.best.Set(rec.Value)
	return nil
}

// RecordProgress keeps the best-objective gauge current during the search.
func (s *PromSink) RecordProgress(ev events.Progress) error {
	if ev.Feasible {
		s.best.Set(ev.BestValue)
	}
	return nil
}
