package optimizer

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/msxvi/strategy/core/events"
	"github.com/msxvi/strategy/core/model"
	"github.com/msxvi/strategy/core/objective"
)

// dpCell is one reachable state after a number of segments, bucketed by
// state of charge. The cell keeps the exact charge of the path that reached
// it; the bucket index only merges near-identical states.
type dpCell struct {
	ok         bool
	timeS      float64
	soc        float64
	prevBucket int
	level      float64 // speed driven on the segment leading into this cell
}

// betterCell prefers lower elapsed time, then higher charge.
func betterCell(a, b dpCell) bool {
	if !b.ok {
		return a.ok
	}
	if !a.ok {
		return false
	}
	if a.timeS != b.timeS {
		return a.timeS < b.timeS
	}
	return a.soc > b.soc
}

// dpTerminal is a candidate end state for a distance-maximizing run. The
// run may stop mid-segment when the time budget expires.
type dpTerminal struct {
	ok        bool
	distanceM float64
	timeS     float64
	soc       float64
	layer     int     // layer the terminal's back-pointer chain starts from
	bucket    int     // bucket within that layer
	partial   bool    // true when the budget expired inside a segment
	level     float64 // speed on the partial segment
}

// betterTerminal prefers more distance, then less time, then more charge.
func betterTerminal(a, b dpTerminal) bool {
	if !b.ok {
		return a.ok
	}
	if !a.ok {
		return false
	}
	if a.distanceM != b.distanceM {
		return a.distanceM > b.distanceM
	}
	if a.timeS != b.timeS {
		return a.timeS < b.timeS
	}
	return a.soc > b.soc
}

// runDP searches the discretized speed and charge lattice with a forward
// recursion. Layer i holds every reachable state after the first i
// segments; transitions evaluate the energy model at each admissible speed
// level and prune states that leave the battery bounds.
func (r *Runner) runDP(ctx context.Context, eval *objective.Evaluator, initial model.VehicleState, runID string) (Result, error) {
	segs := eval.Segments()
	tracker := eval.Tracker()
	em := eval.EnergyModel()
	oracle := eval.Oracle()
	lo, hi := r.bounds(eval)

	n := len(segs)
	buckets := r.cfg.SoCBuckets
	span := tracker.SoCMax - tracker.SoCMin
	bucketOf := func(soc float64) int {
		b := int(float64(buckets-1) * (soc - tracker.SoCMin) / span)
		if b < 0 {
			b = 0
		}
		if b >= buckets {
			b = buckets - 1
		}
		return b
	}

	// Admissible speed levels per segment: the configured grid capped by the
	// segment bounds, deduplicated after capping.
	grid := floats.Span(make([]float64, r.cfg.SpeedLevels), r.cfg.VMinMS, r.cfg.VMaxMS)
	levels := make([][]float64, n)
	for i := range segs {
		var ls []float64
		for _, v := range grid {
			if v < lo[i] {
				v = lo[i]
			}
			if v > hi[i] {
				v = hi[i]
			}
			if len(ls) == 0 || v != ls[len(ls)-1] {
				ls = append(ls, v)
			}
		}
		levels[i] = ls
	}

	// Cumulative distance at each layer boundary.
	distAt := make([]float64, n+1)
	for i, s := range segs {
		distAt[i+1] = distAt[i] + s.DistanceM
	}

	budget := eval.TimeBudgetS()
	fsgp := eval.Mode() == model.ObjectiveFSGP

	layers := make([][]dpCell, n+1)
	for i := range layers {
		layers[i] = make([]dpCell, buckets)
	}
	if tracker.Feasible(initial) {
		b := bucketOf(initial.SoC)
		layers[0][b] = dpCell{ok: true, timeS: initial.ElapsedS, soc: initial.SoC, prevBucket: -1}
	}

	var evals atomic.Int64
	var best dpTerminal

	workers := max(1, r.cfg.Workers)
	for i := 0; i < n && ctx.Err() == nil; i++ {
		seg := segs[i]
		cur := layers[i]

		// Budget boundary: a state that already used the whole budget is a
		// terminal, not a transition source.
		sources := make([]int, 0, buckets)
		for b, c := range cur {
			if !c.ok {
				continue
			}
			if fsgp && c.timeS >= budget {
				best = pickTerminal(best, dpTerminal{
					ok: true, distanceM: distAt[i], timeS: c.timeS, soc: c.soc,
					layer: i, bucket: b,
				})
				continue
			}
			sources = append(sources, b)
		}

		chunks := splitChunks(sources, workers)
		nexts := make([][]dpCell, len(chunks))
		terms := make([]dpTerminal, len(chunks))
		g, gctx := errgroup.WithContext(ctx)
		for w, chunk := range chunks {
			nexts[w] = make([]dpCell, buckets)
			g.Go(func() error {
				next := nexts[w]
				var term dpTerminal
				for _, b := range chunk {
					if gctx.Err() != nil {
						return nil
					}
					c := cur[b]
					sample, err := oracle.Sample(i, c.timeS)
					if err != nil {
						continue
					}
					for _, v := range levels[i] {
						dE, dt, err := em.Evaluate(seg, v, sample)
						evals.Add(1)
						if err != nil {
							continue
						}
						if fsgp && c.timeS+dt > budget {
							f := (budget - c.timeS) / dt
							st := tracker.Integrate(model.VehicleState{SoC: c.soc}, dE*f)
							if !tracker.Feasible(st) {
								continue
							}
							term = pickTerminal(term, dpTerminal{
								ok: true, distanceM: distAt[i] + f*seg.DistanceM,
								timeS: budget, soc: st.SoC,
								layer: i, bucket: b, partial: true, level: v,
							})
							continue
						}
						st := tracker.Integrate(model.VehicleState{SoC: c.soc}, dE)
						if !tracker.Feasible(st) {
							continue
						}
						cell := dpCell{ok: true, timeS: c.timeS + dt, soc: st.SoC, prevBucket: b, level: v}
						nb := bucketOf(cell.soc)
						if betterCell(cell, next[nb]) {
							next[nb] = cell
						}
					}
				}
				terms[w] = term
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Result{}, err
		}
		for w := range chunks {
			for b, c := range nexts[w] {
				if betterCell(c, layers[i+1][b]) {
					layers[i+1][b] = c
				}
			}
			best = pickTerminal(best, terms[w])
		}

		r.publish(events.Progress{
			RunID:       runID,
			Iteration:   i + 1,
			Evaluations: int(evals.Load()),
			BestValue:   best.distanceM,
			Feasible:    best.ok,
		})
	}

	// Completed routes are terminals in both modes. For distance runs the
	// final layer competes with mid-route stops on distance and time.
	for b, c := range layers[n] {
		if !c.ok {
			continue
		}
		best = pickTerminal(best, dpTerminal{
			ok: true, distanceM: distAt[n], timeS: c.timeS, soc: c.soc,
			layer: n, bucket: b,
		})
	}

	result := Result{
		Iterations:  n,
		Evaluations: int(evals.Load()),
		Converged:   ctx.Err() == nil,
	}
	if !best.ok {
		traj := project(lo, lo, hi)
		score := eval.Score(traj, initial)
		result.Trajectory = traj
		result.Score = score
		return result, &NoFeasibleSolutionError{RunID: runID, Trajectory: traj, Score: score}
	}

	traj := r.reconstruct(layers, best, lo)
	result.Trajectory = traj
	result.Score = eval.Score(traj, initial)
	return result, nil
}

// reconstruct walks the back-pointer chain from a terminal into a full
// trajectory. Segments past a mid-route stop never run; they get the floor
// speed so the vector stays well formed.
func (r *Runner) reconstruct(layers [][]dpCell, best dpTerminal, lo []float64) model.Trajectory {
	n := len(layers) - 1
	traj := make(model.Trajectory, n)
	for j := range traj {
		traj[j] = lo[j]
	}
	if best.partial {
		traj[best.layer] = best.level
	}
	layer, bucket := best.layer, best.bucket
	for layer > 0 {
		c := layers[layer][bucket]
		traj[layer-1] = c.level
		bucket = c.prevBucket
		layer--
	}
	return traj
}

func pickTerminal(a, b dpTerminal) dpTerminal {
	if betterTerminal(b, a) {
		return b
	}
	return a
}

// splitChunks partitions the bucket indices into at most w contiguous
// chunks for parallel expansion.
func splitChunks(idx []int, w int) [][]int {
	if len(idx) == 0 {
		return nil
	}
	if w > len(idx) {
		w = len(idx)
	}
	chunks := make([][]int, 0, w)
	size := (len(idx) + w - 1) / w
	for start := 0; start < len(idx); start += size {
		end := min(start+size, len(idx))
		chunks = append(chunks, idx[start:end])
	}
	return chunks
}
