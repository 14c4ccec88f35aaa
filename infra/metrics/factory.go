package metrics

import (
	"github.com/msxvi/strategy/core/factory"
	coremetrics "github.com/msxvi/strategy/core/metrics"
)

type influxConf struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

func init() {
	_ = coremetrics.RegisterSink("nop", newNopSink)
	_ = coremetrics.RegisterSink("prometheus", newPromSink)
	_ = coremetrics.RegisterSink("influx", newInfluxSink)
}

func newNopSink(map[string]any) (coremetrics.MetricsSink, error) {
	return coremetrics.NopSink{}, nil
}

// The scrape port lives in the top-level metrics config because the HTTP
// server is shared across sinks, so the prometheus sink conf is empty.
func newPromSink(map[string]any) (coremetrics.MetricsSink, error) {
	return NewPromSink()
}

func newInfluxSink(conf map[string]any) (coremetrics.MetricsSink, error) {
	var c influxConf
	if err := factory.Decode(conf, &c); err != nil {
		return nil, err
	}
	return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
}
