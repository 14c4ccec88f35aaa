package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/msxvi/strategy/config"
	"github.com/msxvi/strategy/core/energy"
	"github.com/msxvi/strategy/core/env"
	"github.com/msxvi/strategy/core/events"
	coremetrics "github.com/msxvi/strategy/core/metrics"
	"github.com/msxvi/strategy/core/model"
	"github.com/msxvi/strategy/core/monitoring"
	"github.com/msxvi/strategy/core/objective"
	"github.com/msxvi/strategy/core/optimizer"
	"github.com/msxvi/strategy/core/route"
	"github.com/msxvi/strategy/core/soc"
	"github.com/msxvi/strategy/infra/logger"
	"github.com/msxvi/strategy/infra/metrics"
	"github.com/msxvi/strategy/infra/mqtt"
	"github.com/msxvi/strategy/internal/eventbus"
	"github.com/msxvi/strategy/pkg/export"
)

// Service wires the route, environment and vehicle models into an
// optimizer run and reports the winning plan.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	segments  []model.Segment
	gpxPoints []route.Point
	evaluator *objective.Evaluator
	runner    *optimizer.Runner
	sink      coremetrics.MetricsSink
	bus       *eventbus.Bus[events.Progress]
	publisher mqtt.Publisher
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	samples, pts, err := loadRoute(cfg.Route)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	segs, err := route.Discretize(samples, cfg.Route.SegmentLengthM)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	logg.Infof("route discretized into %d segments over %.1f km",
		len(segs), model.RouteLength(segs)/1000)

	oracle, err := env.New(cfg.Environment.Source)
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if cfg.Environment.Cache {
		oracle = env.NewMemo(oracle)
	}

	em, err := energy.New(cfg.Vehicle)
	if err != nil {
		return nil, fmt.Errorf("energy model: %w", err)
	}
	tracker, err := soc.NewTracker(cfg.Vehicle)
	if err != nil {
		return nil, fmt.Errorf("soc tracker: %w", err)
	}

	mode := model.ObjectiveASC
	if cfg.Objective.Mode == "fsgp" {
		mode = model.ObjectiveFSGP
	}
	eval, err := objective.New(segs, oracle, em, tracker, mode, cfg.Objective.TimeBudgetS)
	if err != nil {
		return nil, fmt.Errorf("evaluator: %w", err)
	}

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	bus := eventbus.New[events.Progress]()
	runner, err := optimizer.New(cfg.Optimizer, logg, bus)
	if err != nil {
		return nil, err
	}

	svc := &Service{
		cfg:       cfg,
		log:       logg,
		segments:  segs,
		gpxPoints: pts,
		evaluator: eval,
		runner:    runner,
		sink:      sink,
		bus:       bus,
	}
	if cfg.Telemetry.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.Telemetry.MQTT)
		if err != nil {
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

func loadRoute(cfg config.RouteConfig) ([]route.Sample, []route.Point, error) {
	if cfg.GPXPath != "" {
		pts, err := route.LoadGPX(cfg.GPXPath, cfg.Track)
		if err != nil {
			return nil, nil, err
		}
		samples, err := route.SamplesFromPoints(pts)
		if err != nil {
			return nil, nil, err
		}
		return samples, pts, nil
	}
	samples := make([]route.Sample, len(cfg.Samples))
	for i, s := range cfg.Samples {
		samples[i] = route.Sample{
			DistanceM:    s.DistanceM,
			ElevationM:   s.ElevationM,
			HeadingDeg:   s.HeadingDeg,
			SpeedLimitMS: s.SpeedLimitMS,
		}
	}
	return samples, nil, nil
}

// Run executes one optimization and reports the result. It blocks until
// the run finishes or the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			defer monitoring.Recover()
			if err := metrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	initial := model.VehicleState{SoC: s.cfg.Objective.InitialSoC}
	res, runErr := s.runner.Run(ctx, s.evaluator, initial)

	var nfe *optimizer.NoFeasibleSolutionError
	switch {
	case runErr == nil:
	case errors.As(runErr, &nfe):
		// The diagnostics below still run on the carried candidate so the
		// operator sees which constraints bind.
		s.log.Warnf("%v", nfe)
		for _, v := range nfe.Score.Violations {
			s.log.Warnf("violation %s at segment %d (magnitude %.4f)",
				v.Constraint, v.SegmentIndex, v.Magnitude)
		}
	default:
		monitoring.CaptureException(runErr, map[string]string{"component": "optimizer"})
		return runErr
	}

	trace, score := s.evaluator.Trace(res.Trajectory, initial)
	s.report(res, score, trace)
	return runErr
}

func (s *Service) report(res optimizer.Result, score model.ObjectiveResult, trace []objective.TracePoint) {
	rec := coremetrics.RunRecord{
		RunID:       res.RunID,
		Strategy:    res.Strategy,
		Objective:   score.Objective.String(),
		Value:       score.Value,
		DistanceM:   score.DistanceM,
		ElapsedS:    score.ElapsedS,
		FinalSoC:    score.FinalSoC,
		Feasible:    score.Feasible,
		Violations:  len(score.Violations),
		Evaluations: res.Evaluations,
		Runtime:     res.Runtime,
		Time:        time.Now(),
	}
	meanMS := 0.0
	if score.ElapsedS > 0 {
		meanMS = score.DistanceM / score.ElapsedS
	}
	usedJ := (s.cfg.Objective.InitialSoC - score.FinalSoC) * s.cfg.Vehicle.BatteryJ
	s.log.Infof("run %s (%s): %s=%.1f distance=%.1f km elapsed=%.1f s mean=%.1f m/s final_soc=%.4f used=%.1f kJ feasible=%v",
		res.RunID, res.Strategy, rec.Objective, score.Value,
		score.DistanceM/1000, score.ElapsedS, meanMS, score.FinalSoC, usedJ/1000, score.Feasible)

	if err := s.sink.RecordRun(rec); err != nil {
		s.log.Errorf("record run: %v", err)
	}
	if tr, ok := s.sink.(coremetrics.TraceRecorder); ok {
		if err := tr.RecordTrace(res.RunID, trace); err != nil {
			s.log.Errorf("record trace: %v", err)
		}
	}

	plan := export.BuildPlan(s.segments, trace, s.cfg.Optimizer.VMinMS, s.cfg.Optimizer.VMaxMS)
	s.exportPlan(plan, res.Trajectory)

	if s.publisher != nil {
		msg := struct {
			RunID     string       `json:"run_id"`
			Strategy  string       `json:"strategy"`
			Objective string       `json:"objective"`
			Value     float64      `json:"value"`
			Feasible  bool         `json:"feasible"`
			Plan      []export.Row `json:"plan"`
		}{res.RunID, res.Strategy, score.Objective.String(), score.Value, score.Feasible, plan}
		if err := s.publisher.Publish(s.cfg.Telemetry.Topic, msg); err != nil {
			s.log.Errorf("publish plan: %v", err)
		}
	}
}

func (s *Service) exportPlan(plan []export.Row, traj model.Trajectory) {
	write := func(path string, fn func(f *os.File) error) {
		if path == "" {
			return
		}
		f, err := os.Create(path)
		if err != nil {
			s.log.Errorf("export %s: %v", path, err)
			return
		}
		defer f.Close()
		if err := fn(f); err != nil {
			s.log.Errorf("export %s: %v", path, err)
		}
	}
	write(s.cfg.Export.PlanJSONPath, func(f *os.File) error {
		return export.WriteJSON(f, plan)
	})
	write(s.cfg.Export.PlanCSVPath, func(f *os.File) error {
		return export.WriteCSV(f, plan)
	})
	if s.cfg.Export.GrafanaJSONPath != "" {
		if len(s.gpxPoints) == 0 {
			s.log.Warnf("grafana export needs a gpx route, skipping")
			return
		}
		write(s.cfg.Export.GrafanaJSONPath, func(f *os.File) error {
			return export.WriteGrafanaJSON(f, s.gpxPoints, s.segments, traj, s.cfg.Optimizer.VMinMS, s.cfg.Optimizer.VMaxMS)
		})
	}
}

// Simulate scores a constant-speed trajectory without running the
// optimizer. Useful for sanity-checking the physics against telemetry.
func (s *Service) Simulate(speedMS float64) ([]objective.TracePoint, model.ObjectiveResult) {
	traj := make(model.Trajectory, len(s.segments))
	for i := range traj {
		traj[i] = speedMS
	}
	initial := model.VehicleState{SoC: s.cfg.Objective.InitialSoC}
	return s.evaluator.Trace(traj, initial)
}

// Close releases resources held by the service.
func (s *Service) Close() {
	if s.publisher != nil {
		s.publisher.Close()
	}
	s.bus.Close()
}
