package energy

import (
	"errors"
	"fmt"
	"math"

	"github.com/msxvi/strategy/core/model"
)

// ErrInvalidSpeed indicates a non-positive candidate speed. Callers treat it
// as candidate infeasibility, not a fatal error.
var ErrInvalidSpeed = errors.New("speed must be positive")

// Breakdown itemizes the power terms for one segment evaluation. All values
// are in watts at the point of generation or loss; drivetrain efficiency is
// applied when terms are combined into the net battery power.
type Breakdown struct {
	RollingW float64
	DragW    float64
	GradeW   float64
	SolarW   float64
	AuxW     float64
	NetW     float64 // net battery power, positive when charging
}

// Model computes per-segment energy deltas for a fixed set of vehicle
// parameters. All methods are pure functions of their inputs.
type Model struct {
	Params model.VehicleParams
}

// New returns a Model after validating the parameters.
func New(params model.VehicleParams) (Model, error) {
	if err := params.Validate(); err != nil {
		return Model{}, fmt.Errorf("vehicle params: %w", err)
	}
	return Model{Params: params}, nil
}

// Evaluate returns the net battery energy change in joules (positive when
// the battery gains energy) and the time in seconds spent traversing the
// segment at the given speed.
func (m Model) Evaluate(seg model.Segment, speedMS float64, sample model.EnvironmentSample) (energyDeltaJ, timeDeltaS float64, err error) {
	bd, timeDeltaS, err := m.BreakdownAt(seg, speedMS, sample)
	if err != nil {
		return 0, 0, err
	}
	return bd.NetW * timeDeltaS, timeDeltaS, nil
}

// BreakdownAt returns the itemized power terms and the segment traversal
// time. Traction losses (rolling, drag, positive grade) are divided by the
// drivetrain efficiency; descending grades provide no regeneration.
func (m Model) BreakdownAt(seg model.Segment, speedMS float64, sample model.EnvironmentSample) (Breakdown, float64, error) {
	if speedMS <= 0 {
		return Breakdown{}, 0, fmt.Errorf("%w: %.3f m/s on segment %d", ErrInvalidSpeed, speedMS, seg.Index)
	}
	p := m.Params
	timeDeltaS := seg.DistanceM / speedMS

	air := airspeed(speedMS, sample.Wind, seg.HeadingDeg)
	bd := Breakdown{
		RollingW: RollingPower(speedMS, p.MassKg, p.GravityConst, p.RollingCoeff),
		DragW:    DragPower(speedMS, air, p.AirDensity, p.DragCoeff, p.FrontalAreaM2),
		GradeW:   GradePower(speedMS, seg.GradeAngle(), p.MassKg, p.GravityConst),
		SolarW:   SolarPower(sample.IrradianceWM2, p.PanelAreaM2, p.PanelEff),
		AuxW:     p.AuxDrawW,
	}

	eff := math.Max(p.DriveEff, 1e-9)
	traction := (bd.RollingW + bd.DragW + math.Max(bd.GradeW, 0)) / eff
	bd.NetW = bd.SolarW - traction - bd.AuxW
	return bd, timeDeltaS, nil
}

// airspeed returns the vehicle speed relative to the air. The wind heading
// is the direction the wind blows from, so wind aligned with the travel
// heading is a headwind and raises the relative speed. Tailwinds stronger
// than the vehicle cannot push the airspeed below zero.
func airspeed(speedMS float64, wind model.Wind, headingDeg float64) float64 {
	if wind.SpeedMS == 0 {
		return speedMS
	}
	rel := (wind.HeadingDeg - headingDeg) * math.Pi / 180
	headwind := wind.SpeedMS * math.Cos(rel)
	return math.Max(speedMS+headwind, 0)
}
