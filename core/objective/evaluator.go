// Package objective scores candidate trajectories by running the full
// segment-by-segment simulation (energy model + state of charge tracking)
// and reporting the race objective together with any constraint violations.
package objective

import (
	"fmt"
	"math"

	"github.com/msxvi/strategy/core/energy"
	"github.com/msxvi/strategy/core/env"
	"github.com/msxvi/strategy/core/model"
	"github.com/msxvi/strategy/core/soc"
)

// TracePoint is the simulated state at the end of one segment, kept for
// diagnostics and export.
type TracePoint struct {
	SegmentIndex int
	SpeedMS      float64
	ElapsedS     float64
	DistanceM    float64
	SoC          float64
	Powers       energy.Breakdown
}

// Evaluator runs candidate trajectories against a fixed route, environment
// and vehicle. It holds no mutable state: every Score call works on a fresh
// VehicleState seeded from the initial condition, so Evaluator is safe for
// concurrent use across candidates.
type Evaluator struct {
	segments    []model.Segment
	oracle      env.Oracle
	energyModel energy.Model
	tracker     soc.Tracker
	mode        model.Objective
	timeBudgetS float64
}

// New builds an Evaluator. For the FSGP objective a positive time budget is
// required; ASC ignores it.
func New(segments []model.Segment, oracle env.Oracle, em energy.Model, tracker soc.Tracker, mode model.Objective, timeBudgetS float64) (*Evaluator, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("no segments")
	}
	if oracle == nil {
		return nil, fmt.Errorf("nil oracle")
	}
	if mode == model.ObjectiveFSGP && timeBudgetS <= 0 {
		return nil, fmt.Errorf("fsgp objective requires a positive time budget")
	}
	return &Evaluator{
		segments:    segments,
		oracle:      oracle,
		energyModel: em,
		tracker:     tracker,
		mode:        mode,
		timeBudgetS: timeBudgetS,
	}, nil
}

// Segments returns the route segments the evaluator simulates over.
func (e *Evaluator) Segments() []model.Segment { return e.segments }

// Mode returns the configured race objective.
func (e *Evaluator) Mode() model.Objective { return e.mode }

// TimeBudgetS returns the FSGP time budget in seconds.
func (e *Evaluator) TimeBudgetS() float64 { return e.timeBudgetS }

// Tracker exposes the state of charge tracker in use.
func (e *Evaluator) Tracker() soc.Tracker { return e.tracker }

// EnergyModel exposes the configured energy model.
func (e *Evaluator) EnergyModel() energy.Model { return e.energyModel }

// Oracle exposes the environment oracle in use.
func (e *Evaluator) Oracle() env.Oracle { return e.oracle }

// Score runs the simulation for one trajectory and reports the objective
// and all constraint violations, each annotated with the segment index at
// which it first occurred.
func (e *Evaluator) Score(traj model.Trajectory, initial model.VehicleState) model.ObjectiveResult {
	res, _ := e.run(traj, initial, false)
	return res
}

// Trace behaves like Score but also returns the per-segment state history.
func (e *Evaluator) Trace(traj model.Trajectory, initial model.VehicleState) ([]TracePoint, model.ObjectiveResult) {
	res, trace := e.run(traj, initial, true)
	return trace, res
}

func (e *Evaluator) run(traj model.Trajectory, initial model.VehicleState, collect bool) (model.ObjectiveResult, []TracePoint) {
	res := model.ObjectiveResult{Objective: e.mode, Feasible: true}
	var trace []TracePoint
	if collect {
		trace = make([]TracePoint, 0, len(e.segments))
	}

	st := initial
	if name, mag, bad := e.tracker.Violation(st); bad {
		res.Feasible = false
		res.Violations = append(res.Violations, model.ConstraintViolation{
			Constraint: name, SegmentIndex: 0, Magnitude: mag,
		})
		return e.finish(res, st), trace
	}
	if len(traj) != len(e.segments) {
		res.Feasible = false
		res.Violations = append(res.Violations, model.ConstraintViolation{
			Constraint: model.ConstraintIncomplete, SegmentIndex: len(traj),
			Magnitude: float64(len(e.segments) - len(traj)),
		})
		return e.finish(res, st), trace
	}

	completed := 0
	for i, seg := range e.segments {
		if e.mode == model.ObjectiveFSGP && st.ElapsedS >= e.timeBudgetS {
			break
		}
		speed := traj[i]

		if !seg.WithinLimit(speed) {
			res.Feasible = false
			res.Violations = append(res.Violations, model.ConstraintViolation{
				Constraint: model.ConstraintSpeedLimit, SegmentIndex: i,
				Magnitude: speed - seg.SpeedLimitMS,
			})
			// The physics stays defined above the limit, so simulation
			// continues to surface any further violations downstream.
		}

		sample, err := e.oracle.Sample(i, st.ElapsedS)
		if err != nil {
			res.Feasible = false
			res.Violations = append(res.Violations, model.ConstraintViolation{
				Constraint: model.ConstraintEnvData, SegmentIndex: i,
			})
			return e.finish(res, st), trace
		}

		bd, dt, err := e.energyModel.BreakdownAt(seg, speed, sample)
		if err != nil {
			res.Feasible = false
			res.Violations = append(res.Violations, model.ConstraintViolation{
				Constraint: model.ConstraintSpeed, SegmentIndex: i,
				Magnitude: math.Max(0, -speed),
			})
			return e.finish(res, st), trace
		}

		dE := bd.NetW * dt
		distance := seg.DistanceM

		if e.mode == model.ObjectiveFSGP && st.ElapsedS+dt > e.timeBudgetS {
			// The budget expires mid-segment: credit the fraction covered.
			f := (e.timeBudgetS - st.ElapsedS) / dt
			dE *= f
			distance *= f
			dt = e.timeBudgetS - st.ElapsedS
		}

		st = e.tracker.Integrate(st, dE)
		st.ElapsedS += dt
		st.DistanceM += distance

		if collect {
			trace = append(trace, TracePoint{
				SegmentIndex: i,
				SpeedMS:      speed,
				ElapsedS:     st.ElapsedS,
				DistanceM:    st.DistanceM,
				SoC:          st.SoC,
				Powers:       bd,
			})
		}

		if name, mag, bad := e.tracker.Violation(st); bad {
			res.Feasible = false
			res.Violations = append(res.Violations, model.ConstraintViolation{
				Constraint: name, SegmentIndex: i, Magnitude: mag,
			})
			return e.finish(res, st), trace
		}
		if distance == seg.DistanceM {
			completed++
		}
	}

	if e.mode == model.ObjectiveASC && completed < len(e.segments) {
		res.Feasible = false
		res.Violations = append(res.Violations, model.ConstraintViolation{
			Constraint: model.ConstraintIncomplete, SegmentIndex: completed,
			Magnitude: model.RouteLength(e.segments) - st.DistanceM,
		})
	}
	return e.finish(res, st), trace
}

// finish fixes the scalar objective from the terminal state.
func (e *Evaluator) finish(res model.ObjectiveResult, st model.VehicleState) model.ObjectiveResult {
	res.DistanceM = st.DistanceM
	res.ElapsedS = st.ElapsedS
	res.FinalSoC = st.SoC
	if e.mode == model.ObjectiveASC {
		res.Value = st.ElapsedS
	} else {
		res.Value = st.DistanceM
	}
	return res
}
