package optimizer

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msxvi/strategy/core/events"
	"github.com/msxvi/strategy/core/logger"
	"github.com/msxvi/strategy/core/model"
	"github.com/msxvi/strategy/core/objective"
	"github.com/msxvi/strategy/internal/eventbus"
)

// Strategy names accepted in the configuration.
const (
	StrategyNelderMead = "neldermead"
	StrategyDP         = "dp"
)

// Config defines the search parameters.
type Config struct {
	Strategy      string  `json:"strategy"`       // "neldermead" or "dp"
	VMinMS        float64 `json:"vmin_ms"`        // minimum allowed speed
	VMaxMS        float64 `json:"vmax_ms"`        // maximum allowed speed
	MaxIterations int     `json:"max_iterations"` // iteration budget per restart
	Tolerance     float64 `json:"tolerance"`      // convergence tolerance on the penalized objective
	Restarts      int     `json:"restarts"`       // independent Nelder-Mead starts
	SpeedLevels   int     `json:"speed_levels"`   // DP speed discretization
	SoCBuckets    int     `json:"soc_buckets"`    // DP state of charge discretization
	Workers       int     `json:"workers"`        // parallel candidate evaluations
	TimeoutS      float64 `json:"timeout_s"`      // wall-clock limit, 0 disables
	ReserveSoC    float64 `json:"reserve_soc"`    // desired terminal margin above soc_min
	ReserveWeight float64 `json:"reserve_weight"` // penalty weight on the reserve deficit
}

// SetDefaults applies the reference search parameters.
func (c *Config) SetDefaults() {
	if c.Strategy == "" {
		c.Strategy = StrategyNelderMead
	}
	if c.VMinMS == 0 {
		c.VMinMS = 10
	}
	if c.VMaxMS == 0 {
		c.VMaxMS = 20
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 2000
	}
	if c.Tolerance == 0 {
		c.Tolerance = 1e-6
	}
	if c.Restarts == 0 {
		c.Restarts = 4
	}
	if c.SpeedLevels == 0 {
		c.SpeedLevels = 8
	}
	if c.SoCBuckets == 0 {
		c.SoCBuckets = 100
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.ReserveWeight == 0 {
		c.ReserveWeight = 1e5
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Strategy != StrategyNelderMead && c.Strategy != StrategyDP {
		return fmt.Errorf("unknown strategy %q", c.Strategy)
	}
	if c.VMinMS <= 0 {
		return fmt.Errorf("vmin must be positive")
	}
	if c.VMaxMS < c.VMinMS {
		return fmt.Errorf("vmax must not be below vmin")
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max iterations must be positive")
	}
	if c.SpeedLevels < 2 {
		return fmt.Errorf("at least two speed levels required")
	}
	if c.SoCBuckets < 2 {
		return fmt.Errorf("at least two soc buckets required")
	}
	if c.ReserveSoC < 0 {
		return fmt.Errorf("reserve soc must not be negative")
	}
	return nil
}

// Result is the outcome of one optimization run.
type Result struct {
	RunID       string
	Strategy    string
	Trajectory  model.Trajectory
	Score       model.ObjectiveResult
	Iterations  int
	Evaluations int
	Converged   bool
	Runtime     time.Duration
}

// NoFeasibleSolutionError reports that no trajectory satisfied the
// constraints within the search budget. It carries the best infeasible
// candidate found so callers can diagnose which constraints bind.
type NoFeasibleSolutionError struct {
	RunID      string
	Trajectory model.Trajectory
	Score      model.ObjectiveResult
}

func (e *NoFeasibleSolutionError) Error() string {
	return fmt.Sprintf("no feasible solution found in run %s (%d violations on best candidate)",
		e.RunID, len(e.Score.Violations))
}

// Runner executes optimization runs with the configured strategy.
type Runner struct {
	cfg Config
	log logger.Logger
	bus *eventbus.Bus[events.Progress]
}

// New creates a Runner. The bus is optional; progress events are dropped
// when it is nil.
func New(cfg Config, log logger.Logger, bus *eventbus.Bus[events.Progress]) (*Runner, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("optimizer config: %w", err)
	}
	return &Runner{cfg: cfg, log: log, bus: bus}, nil
}

// Run searches for the best trajectory. It returns a Result on success or a
// *NoFeasibleSolutionError when the search completed without a feasible
// candidate. Other errors indicate setup problems, never candidate-local
// failures.
func (r *Runner) Run(ctx context.Context, eval *objective.Evaluator, initial model.VehicleState) (Result, error) {
	runID := uuid.NewString()
	if r.cfg.TimeoutS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.TimeoutS*float64(time.Second)))
		defer cancel()
	}

	start := time.Now()
	var (
		res Result
		err error
	)
	switch r.cfg.Strategy {
	case StrategyDP:
		res, err = r.runDP(ctx, eval, initial, runID)
	default:
		res, err = r.runNelderMead(ctx, eval, initial, runID)
	}
	res.RunID = runID
	res.Strategy = r.cfg.Strategy
	res.Runtime = time.Since(start)
	if err != nil {
		return res, err
	}

	r.log.Infof("run %s: %s objective %.2f, %d evaluations in %s",
		runID, res.Score.Objective, res.Score.Value, res.Evaluations, res.Runtime)
	return res, nil
}

// publish emits a progress event when a bus is attached.
func (r *Runner) publish(p events.Progress) {
	if r.bus != nil {
		r.bus.Publish(p)
	}
}

// penalty converts a scored candidate into the scalar minimized by the
// continuous search. Constraint violations dominate the landscape so the
// search is pushed back into the feasible region; a soft reserve term keeps
// a terminal margin above soc_min.
func (r *Runner) penalty(eval *objective.Evaluator, res model.ObjectiveResult) float64 {
	var s float64
	if eval.Mode() == model.ObjectiveASC {
		s = res.ElapsedS
	} else {
		s = -res.DistanceM
	}
	for _, v := range res.Violations {
		s += violationPenalty + v.Magnitude*violationSlope
	}
	reserve := eval.Tracker().SoCMin + r.cfg.ReserveSoC
	if res.FinalSoC < reserve {
		s += (reserve - res.FinalSoC) * r.cfg.ReserveWeight
	}
	return s
}

const (
	violationPenalty = 1e8
	violationSlope   = 1e6
)

// recorder tracks the best feasible and best penalized candidates seen
// across concurrent evaluations.
type recorder struct {
	mu          sync.Mutex
	bestTraj    model.Trajectory
	bestScore   model.ObjectiveResult
	hasFeasible bool

	anyTraj    model.Trajectory
	anyScore   model.ObjectiveResult
	anyPenalty float64
	hasAny     bool
}

func (rec *recorder) consider(traj model.Trajectory, score model.ObjectiveResult, penalty float64) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if !rec.hasAny || penalty < rec.anyPenalty {
		rec.anyTraj = traj.Clone()
		rec.anyScore = score
		rec.anyPenalty = penalty
		rec.hasAny = true
	}
	if !score.Feasible {
		return
	}
	if !rec.hasFeasible || score.Better(rec.bestScore) {
		rec.bestTraj = traj.Clone()
		rec.bestScore = score
		rec.hasFeasible = true
	}
}

func (rec *recorder) best() (model.Trajectory, model.ObjectiveResult, bool) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.hasFeasible {
		return rec.bestTraj, rec.bestScore, true
	}
	return rec.anyTraj, rec.anyScore, false
}
