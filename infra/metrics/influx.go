package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/msxvi/strategy/core/metrics"
	"github.com/msxvi/strategy/core/objective"
	"github.com/msxvi/strategy/infra/logger"
)

// InfluxSink writes run summaries and trajectory traces to an InfluxDB
// instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run summary as a single point.
func (s *InfluxSink) RecordRun(rec coremetrics.RunRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	p := write.NewPointWithMeasurement("optimization_run").
		AddTag("run_id", rec.RunID).
		AddTag("strategy", rec.Strategy).
		AddTag("objective", rec.Objective).
		AddTag("component", "optimizer").
		AddField("value", round3(rec.Value)).
		AddField("distance_m", round3(rec.DistanceM)).
		AddField("elapsed_s", round3(rec.ElapsedS)).
		AddField("final_soc", round3(rec.FinalSoC)).
		AddField("feasible", rec.Feasible).
		AddField("violations", rec.Violations).
		AddField("evaluations", rec.Evaluations).
		AddField("runtime_ms", round3(rec.Runtime.Seconds()*1000)).
		SetTime(ts)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTrace writes one point per driven segment of the winning plan.
func (s *InfluxSink) RecordTrace(runID string, points []objective.TracePoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	now := time.Now()
	for _, tp := range points {
		p := write.NewPointWithMeasurement("trajectory_point").
			AddTag("run_id", runID).
			AddTag("component", "optimizer").
			AddField("segment", tp.SegmentIndex).
			AddField("speed_ms", round3(tp.SpeedMS)).
			AddField("elapsed_s", round3(tp.ElapsedS)).
			AddField("distance_m", round3(tp.DistanceM)).
			AddField("soc", round3(tp.SoC)).
			AddField("solar_w", round3(tp.Powers.SolarW)).
			AddField("drag_w", round3(tp.Powers.DragW)).
			AddField("rolling_w", round3(tp.Powers.RollingW)).
			AddField("grade_w", round3(tp.Powers.GradeW)).
			AddField("net_w", round3(tp.Powers.NetW)).
			SetTime(now.Add(time.Duration(tp.ElapsedS * float64(time.Second))))
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
