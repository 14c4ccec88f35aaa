package metrics

import "github.com/msxvi/strategy/core/factory"

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterSink adds a sink factory under name. Implementations call this
// from init so importing the package is enough to make a sink available.
func RegisterSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// NewSink builds the configured sinks. No configuration yields the no-op
// sink and multiple sinks are fanned out behind a MultiSink.
func NewSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	sinks := make([]MetricsSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	switch len(sinks) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
