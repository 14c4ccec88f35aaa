package optimizer

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/optimize"

	"github.com/msxvi/strategy/core/events"
	"github.com/msxvi/strategy/core/model"
	"github.com/msxvi/strategy/core/objective"
)

// bounds returns the per-segment speed bounds, tightening the configured
// range with each segment's speed limit. Segments whose limit falls below
// vmin lower the floor as well: crawling through a restricted zone beats an
// automatic violation.
func (r *Runner) bounds(eval *objective.Evaluator) (lo, hi []float64) {
	segs := eval.Segments()
	lo = make([]float64, len(segs))
	hi = make([]float64, len(segs))
	for i, s := range segs {
		h := r.cfg.VMaxMS
		if s.SpeedLimitMS > 0 && s.SpeedLimitMS < h {
			h = s.SpeedLimitMS
		}
		hi[i] = h
		lo[i] = min(r.cfg.VMinMS, h)
	}
	return lo, hi
}

// project clamps the raw optimizer coordinates into the speed bounds,
// yielding a valid trajectory. Nelder-Mead itself is unconstrained; the
// projection keeps every evaluated candidate inside the box.
func project(x, lo, hi []float64) model.Trajectory {
	traj := make(model.Trajectory, len(x))
	for i, v := range x {
		switch {
		case v < lo[i]:
			traj[i] = lo[i]
		case v > hi[i]:
			traj[i] = hi[i]
		default:
			traj[i] = v
		}
	}
	return traj
}

// runNelderMead minimizes the penalized objective over the continuous speed
// vector, running independent restarts in parallel and keeping the best
// feasible candidate seen by any of them.
func (r *Runner) runNelderMead(ctx context.Context, eval *objective.Evaluator, initial model.VehicleState, runID string) (Result, error) {
	lo, hi := r.bounds(eval)
	rec := &recorder{}
	var evals, iterations atomic.Int64
	var converged atomic.Bool

	restarts := max(1, r.cfg.Restarts)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.cfg.Workers))
	for k := 0; k < restarts; k++ {
		g.Go(func() error {
			// Deterministic spread of starting points across the speed box,
			// the first start at the midpoint.
			frac := 0.5
			if k > 0 {
				frac = float64(k) / float64(restarts)
			}
			x0 := make([]float64, len(lo))
			for i := range x0 {
				x0[i] = lo[i] + frac*(hi[i]-lo[i])
			}

			problem := optimize.Problem{
				Func: func(x []float64) float64 {
					traj := project(x, lo, hi)
					score := eval.Score(traj, initial)
					p := r.penalty(eval, score)
					rec.consider(traj, score, p)
					evals.Add(1)
					return p
				},
				Status: func() (optimize.Status, error) {
					if err := gctx.Err(); err != nil {
						return optimize.Failure, err
					}
					return optimize.NotTerminated, nil
				},
			}
			settings := &optimize.Settings{
				MajorIterations: r.cfg.MaxIterations,
				Converger:       &optimize.FunctionConverge{Absolute: r.cfg.Tolerance, Iterations: 100},
			}
			res, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
			if err != nil {
				if gctx.Err() == nil {
					r.log.Warnf("restart %d stopped early: %v", k, err)
				}
				// Keep whatever the recorder already holds.
				if res == nil {
					return nil
				}
			}
			iterations.Add(int64(res.Stats.MajorIterations))
			if res.Status == optimize.FunctionConvergence {
				converged.Store(true)
			}

			_, best, feasible := rec.best()
			r.publish(events.Progress{
				RunID:       runID,
				Iteration:   int(iterations.Load()),
				Evaluations: int(evals.Load()),
				BestValue:   best.Value,
				Feasible:    feasible,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return Result{}, err
	}

	// A cancelled run that never evaluated anything still reports a
	// diagnosable candidate.
	if seen, _, _ := rec.best(); seen == nil {
		traj := project(lo, lo, hi)
		score := eval.Score(traj, initial)
		rec.consider(traj, score, r.penalty(eval, score))
	}

	traj, score, feasible := rec.best()
	result := Result{
		Trajectory:  traj,
		Score:       score,
		Iterations:  int(iterations.Load()),
		Evaluations: int(evals.Load()),
		Converged:   converged.Load(),
	}
	if !feasible {
		return result, &NoFeasibleSolutionError{RunID: runID, Trajectory: traj, Score: score}
	}
	return result, nil
}
