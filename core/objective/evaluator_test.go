package objective

import (
	"math"
	"testing"

	"github.com/msxvi/strategy/core/energy"
	"github.com/msxvi/strategy/core/env"
	"github.com/msxvi/strategy/core/model"
	"github.com/msxvi/strategy/core/soc"
)

// constOracle returns fixed conditions for any (segment, time) query.
type constOracle struct{ ghi float64 }

func (o constOracle) Sample(i int, ts float64) (model.EnvironmentSample, error) {
	return model.EnvironmentSample{SegmentIndex: i, ElapsedS: ts, IrradianceWM2: o.ghi}, nil
}

func flatSegments(n int, lengthM float64) []model.Segment {
	segs := make([]model.Segment, n)
	for i := range segs {
		segs[i] = model.Segment{Index: i, StartM: float64(i) * lengthM, DistanceM: lengthM}
	}
	return segs
}

func bigBatteryParams() model.VehicleParams {
	p := model.DefaultVehicleParams()
	p.BatteryJ = 1e12 // large enough that energy never binds
	return p
}

func newEvaluator(t *testing.T, segs []model.Segment, oracle env.Oracle, p model.VehicleParams, mode model.Objective, budget float64) *Evaluator {
	t.Helper()
	em, err := energy.New(p)
	if err != nil {
		t.Fatalf("energy model: %v", err)
	}
	tracker, err := soc.NewTracker(p)
	if err != nil {
		t.Fatalf("tracker: %v", err)
	}
	ev, err := New(segs, oracle, em, tracker, mode, budget)
	if err != nil {
		t.Fatalf("evaluator: %v", err)
	}
	return ev
}

func constantTrajectory(n int, speed float64) model.Trajectory {
	traj := make(model.Trajectory, n)
	for i := range traj {
		traj[i] = speed
	}
	return traj
}

func TestFSGPDistanceWithinBudget(t *testing.T) {
	segs := flatSegments(3, 1000)
	ev := newEvaluator(t, segs, constOracle{ghi: 800}, bigBatteryParams(), model.ObjectiveFSGP, 200)

	res := ev.Score(constantTrajectory(3, 10), model.VehicleState{SoC: 0.8})
	if !res.Feasible {
		t.Fatalf("expected feasible, violations: %+v", res.Violations)
	}
	// 10 m/s for 200 s covers exactly 2000 m of the 3000 m route.
	if math.Abs(res.Value-2000) > 1e-9 {
		t.Fatalf("distance %v, want 2000", res.Value)
	}
	if math.Abs(res.ElapsedS-200) > 1e-9 {
		t.Fatalf("elapsed %v, want 200", res.ElapsedS)
	}
}

func TestFSGPPartialSegmentCredit(t *testing.T) {
	segs := flatSegments(3, 1000)
	ev := newEvaluator(t, segs, constOracle{ghi: 800}, bigBatteryParams(), model.ObjectiveFSGP, 150)

	res := ev.Score(constantTrajectory(3, 10), model.VehicleState{SoC: 0.8})
	if !res.Feasible {
		t.Fatalf("expected feasible, violations: %+v", res.Violations)
	}
	// The budget expires halfway through the second segment.
	if math.Abs(res.Value-1500) > 1e-9 {
		t.Fatalf("distance %v, want 1500", res.Value)
	}
}

func TestFSGPRouteShorterThanBudget(t *testing.T) {
	segs := flatSegments(2, 500)
	ev := newEvaluator(t, segs, constOracle{ghi: 800}, bigBatteryParams(), model.ObjectiveFSGP, 10000)

	res := ev.Score(constantTrajectory(2, 10), model.VehicleState{SoC: 0.8})
	if !res.Feasible {
		t.Fatalf("expected feasible, violations: %+v", res.Violations)
	}
	if math.Abs(res.Value-1000) > 1e-9 {
		t.Fatalf("distance %v, want full route 1000", res.Value)
	}
	if math.Abs(res.ElapsedS-100) > 1e-9 {
		t.Fatalf("elapsed %v, want 100", res.ElapsedS)
	}
}

func TestASCElapsedTime(t *testing.T) {
	segs := flatSegments(3, 1000)
	ev := newEvaluator(t, segs, constOracle{ghi: 800}, bigBatteryParams(), model.ObjectiveASC, 0)

	res := ev.Score(model.Trajectory{10, 20, 25}, model.VehicleState{SoC: 0.8})
	if !res.Feasible {
		t.Fatalf("expected feasible, violations: %+v", res.Violations)
	}
	want := 1000.0/10 + 1000.0/20 + 1000.0/25
	if math.Abs(res.Value-want) > 1e-9 {
		t.Fatalf("elapsed %v, want %v", res.Value, want)
	}
	if math.Abs(res.DistanceM-3000) > 1e-9 {
		t.Fatalf("distance %v, want 3000", res.DistanceM)
	}
}

func TestSpeedLimitBoundary(t *testing.T) {
	segs := flatSegments(2, 1000)
	segs[1].SpeedLimitMS = 15
	ev := newEvaluator(t, segs, constOracle{ghi: 800}, bigBatteryParams(), model.ObjectiveASC, 0)

	// Exactly at the limit: feasible.
	res := ev.Score(model.Trajectory{15, 15}, model.VehicleState{SoC: 0.8})
	if !res.Feasible {
		t.Fatalf("at-limit trajectory must be feasible, violations: %+v", res.Violations)
	}

	// Any positive margin above the limit: rejected.
	res = ev.Score(model.Trajectory{15, 15.001}, model.VehicleState{SoC: 0.8})
	if res.Feasible {
		t.Fatal("above-limit trajectory must be infeasible")
	}
	v := res.Violations[0]
	if v.Constraint != model.ConstraintSpeedLimit || v.SegmentIndex != 1 {
		t.Fatalf("unexpected violation %+v", v)
	}
}

func TestSoCDepletionInfeasible(t *testing.T) {
	p := model.DefaultVehicleParams()
	p.BatteryJ = 1000 // tiny pack drains within the first segment
	segs := flatSegments(3, 1000)
	ev := newEvaluator(t, segs, constOracle{ghi: 0}, p, model.ObjectiveASC, 0)

	res := ev.Score(constantTrajectory(3, 15), model.VehicleState{SoC: 0.5})
	if res.Feasible {
		t.Fatal("expected infeasible result")
	}
	v := res.Violations[0]
	if v.Constraint != model.ConstraintSoCLow {
		t.Fatalf("expected soc violation, got %+v", v)
	}
	if v.SegmentIndex != 0 {
		t.Fatalf("violation should name the first depleted segment, got %d", v.SegmentIndex)
	}
	if v.Magnitude <= 0 {
		t.Fatalf("violation magnitude must be positive, got %v", v.Magnitude)
	}
}

func TestEnvironmentUnavailableInfeasible(t *testing.T) {
	table, err := env.NewRamp(800, 800, 2, 10) // covers only 10 s
	if err != nil {
		t.Fatalf("ramp: %v", err)
	}
	segs := flatSegments(3, 1000)
	ev := newEvaluator(t, segs, table, bigBatteryParams(), model.ObjectiveASC, 0)

	res := ev.Score(constantTrajectory(3, 10), model.VehicleState{SoC: 0.8})
	if res.Feasible {
		t.Fatal("expected infeasible result")
	}
	if res.Violations[0].Constraint != model.ConstraintEnvData {
		t.Fatalf("expected environment violation, got %+v", res.Violations[0])
	}
}

func TestInvalidSpeedInfeasible(t *testing.T) {
	segs := flatSegments(2, 1000)
	ev := newEvaluator(t, segs, constOracle{ghi: 800}, bigBatteryParams(), model.ObjectiveASC, 0)

	res := ev.Score(model.Trajectory{10, 0}, model.VehicleState{SoC: 0.8})
	if res.Feasible {
		t.Fatal("expected infeasible result")
	}
	if res.Violations[0].Constraint != model.ConstraintSpeed || res.Violations[0].SegmentIndex != 1 {
		t.Fatalf("unexpected violation %+v", res.Violations[0])
	}
}

func TestTrajectoryLengthMismatch(t *testing.T) {
	segs := flatSegments(3, 1000)
	ev := newEvaluator(t, segs, constOracle{ghi: 800}, bigBatteryParams(), model.ObjectiveASC, 0)

	res := ev.Score(model.Trajectory{10, 10}, model.VehicleState{SoC: 0.8})
	if res.Feasible {
		t.Fatal("expected infeasible result")
	}
	if res.Violations[0].Constraint != model.ConstraintIncomplete {
		t.Fatalf("unexpected violation %+v", res.Violations[0])
	}
}

// Elapsed time must be monotonically non-decreasing along the trace.
func TestTraceMonotonicTime(t *testing.T) {
	segs := flatSegments(5, 800)
	ev := newEvaluator(t, segs, constOracle{ghi: 600}, bigBatteryParams(), model.ObjectiveASC, 0)

	trace, res := ev.Trace(model.Trajectory{12, 18, 9, 22, 14}, model.VehicleState{SoC: 0.8})
	if !res.Feasible {
		t.Fatalf("expected feasible, violations: %+v", res.Violations)
	}
	if len(trace) != len(segs) {
		t.Fatalf("trace length %d, want %d", len(trace), len(segs))
	}
	prev := 0.0
	for _, tp := range trace {
		if tp.ElapsedS < prev {
			t.Fatalf("elapsed time decreased at segment %d", tp.SegmentIndex)
		}
		prev = tp.ElapsedS
	}
}

// Fresh state per evaluation: scoring the same trajectory twice gives the
// same result.
func TestScoreIsPure(t *testing.T) {
	segs := flatSegments(4, 1000)
	ev := newEvaluator(t, segs, constOracle{ghi: 700}, bigBatteryParams(), model.ObjectiveASC, 0)
	traj := model.Trajectory{11, 13, 17, 19}
	initial := model.VehicleState{SoC: 0.7}

	a := ev.Score(traj, initial)
	b := ev.Score(traj, initial)
	if a.Value != b.Value || a.FinalSoC != b.FinalSoC || a.ElapsedS != b.ElapsedS {
		t.Fatalf("score not reproducible: %+v vs %+v", a, b)
	}
}
