package metrics

import (
	"context"

	"github.com/msxvi/strategy/core/events"
	coremetrics "github.com/msxvi/strategy/core/metrics"
	"github.com/msxvi/strategy/internal/eventbus"
)

// StartEventCollector subscribes to the progress bus and forwards events to
// the sink. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Progress], sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	rec, ok := sink.(coremetrics.ProgressRecorder)
	if !ok {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, open := <-sub:
				if !open {
					return
				}
				_ = rec.RecordProgress(ev)
			}
		}
	}()
}
