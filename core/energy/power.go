// Package energy implements the vehicle power model: pure functions mapping
// a segment, a candidate speed and ambient conditions to the net battery
// energy change and the time spent on the segment.
package energy

import "math"

// RollingPower returns the power lost to rolling resistance in watts.
func RollingPower(speedMS, massKg, gravity, rollingCoeff float64) float64 {
	return massKg * gravity * rollingCoeff * speedMS
}

// DragPower returns the aerodynamic drag power in watts. airspeedMS is the
// speed of the vehicle relative to the air.
func DragPower(speedMS, airspeedMS, airDensity, dragCoeff, frontalAreaM2 float64) float64 {
	return 0.5 * airDensity * dragCoeff * frontalAreaM2 * airspeedMS * airspeedMS * speedMS
}

// GradePower returns the gravitational power in watts, positive uphill and
// negative downhill.
func GradePower(speedMS, gradeAngleRad, massKg, gravity float64) float64 {
	return massKg * gravity * math.Sin(gradeAngleRad) * speedMS
}

// SolarPower returns the electrical power generated by the array in watts.
// The panels are assumed to lie flat, so global horizontal irradiance maps
// directly through area and efficiency.
func SolarPower(irradianceWM2, panelAreaM2, panelEff float64) float64 {
	return panelAreaM2 * panelEff * irradianceWM2
}
