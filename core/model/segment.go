package model

import "math"

// Segment is one discretized portion of the race route with locally constant
// physical attributes. Segments are immutable once discretization completes
// and are safely shared across concurrent trajectory evaluations.
type Segment struct {
	Index      int     // ordinal position along the route
	StartM     float64 // cumulative distance from the route start in meters
	DistanceM  float64 // segment length in meters
	Grade      float64 // dimensionless slope (rise over run), negative downhill
	HeadingDeg float64 // travel direction in degrees from north
	// SpeedLimitMS is the upper speed bound in m/s. Zero means no limit.
	SpeedLimitMS float64
}

// GradeAngle returns the road angle in radians.
func (s Segment) GradeAngle() float64 {
	return math.Atan(s.Grade)
}

// EndM returns the cumulative distance at the end of the segment.
func (s Segment) EndM() float64 {
	return s.StartM + s.DistanceM
}

// WithinLimit reports whether the given speed respects the segment's speed
// limit. A speed exactly at the limit is allowed.
func (s Segment) WithinLimit(speedMS float64) bool {
	return s.SpeedLimitMS <= 0 || speedMS <= s.SpeedLimitMS
}

// RouteLength returns the total length in meters covered by the segments.
func RouteLength(segments []Segment) float64 {
	var total float64
	for _, s := range segments {
		total += s.DistanceM
	}
	return total
}
