// Package soc integrates per-segment energy deltas into a running battery
// state of charge and checks the capacity bounds. Integration never clamps:
// a state that would leave the bounds is reported as infeasible so the
// optimizer sees the violation instead of a silently truncated battery.
package soc

import (
	"fmt"

	"github.com/msxvi/strategy/core/model"
)

// Tracker enforces battery capacity bounds during trajectory evaluation.
type Tracker struct {
	CapacityJ float64
	SoCMin    float64
	SoCMax    float64
}

// NewTracker derives a tracker from the vehicle parameters.
func NewTracker(p model.VehicleParams) (Tracker, error) {
	t := Tracker{CapacityJ: p.BatteryJ, SoCMin: p.SoCMin, SoCMax: p.SoCMax}
	if t.CapacityJ <= 0 {
		return Tracker{}, fmt.Errorf("battery capacity must be positive")
	}
	if t.SoCMin >= t.SoCMax {
		return Tracker{}, fmt.Errorf("soc_min must be below soc_max")
	}
	return t, nil
}

// Integrate returns a new state with the energy delta applied to the state
// of charge. The result is not clamped; feasibility is checked separately.
func (t Tracker) Integrate(st model.VehicleState, energyDeltaJ float64) model.VehicleState {
	st.SoC += energyDeltaJ / t.CapacityJ
	return st
}

// Feasible reports whether the state of charge lies within the bounds.
func (t Tracker) Feasible(st model.VehicleState) bool {
	return st.SoC >= t.SoCMin && st.SoC <= t.SoCMax
}

// Violation returns the constraint name and magnitude of the bound breach,
// or ok=false when the state is within bounds.
func (t Tracker) Violation(st model.VehicleState) (name string, magnitude float64, ok bool) {
	if st.SoC < t.SoCMin {
		return model.ConstraintSoCLow, t.SoCMin - st.SoC, true
	}
	if st.SoC > t.SoCMax {
		return model.ConstraintSoCHigh, st.SoC - t.SoCMax, true
	}
	return "", 0, false
}
