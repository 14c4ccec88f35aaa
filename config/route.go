package config

import "fmt"

// RouteConfig selects the route geometry source. Either a GPX file or an
// inline sample list must be provided.
type RouteConfig struct {
	// GPXPath points at a GPX file; Track selects the track inside it.
	GPXPath string `json:"gpx_path"`
	Track   int    `json:"track"`
	// Samples define the route inline, mostly for tests and closed circuits.
	Samples []RouteSample `json:"samples"`
	// SegmentLengthM is the discretization step.
	SegmentLengthM float64 `json:"segment_length_m"`
}

// RouteSample is one inline route point.
type RouteSample struct {
	DistanceM    float64 `json:"distance_m"`
	ElevationM   float64 `json:"elevation_m"`
	HeadingDeg   float64 `json:"heading_deg"`
	SpeedLimitMS float64 `json:"speed_limit_ms"`
}

// SetDefaults applies the reference discretization step.
func (c *RouteConfig) SetDefaults() {
	if c.SegmentLengthM == 0 {
		c.SegmentLengthM = 1000
	}
}

// Validate checks that exactly one geometry source is configured.
func (c RouteConfig) Validate() error {
	if c.GPXPath == "" && len(c.Samples) == 0 {
		return fmt.Errorf("either gpx_path or samples is required")
	}
	if c.GPXPath != "" && len(c.Samples) > 0 {
		return fmt.Errorf("gpx_path and samples are mutually exclusive")
	}
	if c.SegmentLengthM <= 0 {
		return fmt.Errorf("segment length must be positive")
	}
	return nil
}
