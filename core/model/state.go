package model

// VehicleState is the running state of the vehicle during a trajectory
// evaluation. Each evaluation works on its own copy seeded from the initial
// condition; states are never shared between candidate trajectories.
type VehicleState struct {
	SoC       float64 // state of charge as a fraction of battery capacity
	ElapsedS  float64 // seconds since race start
	DistanceM float64 // cumulative distance covered in meters
}
