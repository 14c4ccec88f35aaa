// Package route converts a continuous route description into the ordered
// segment sequence consumed by the optimizer. Routes come either from raw
// (distance, elevation) samples or from GPX track files.
package route

import (
	"errors"
	"fmt"
	"math"

	"github.com/msxvi/strategy/core/model"
)

// ErrInvalidRoute indicates malformed route input. It is fatal and aborts
// before any optimization starts.
var ErrInvalidRoute = errors.New("invalid route")

// Sample is one point of the route description: cumulative distance from the
// start, elevation and an optional speed limit applying from this point on.
type Sample struct {
	DistanceM    float64 `json:"distance_m"`
	ElevationM   float64 `json:"elevation_m"`
	HeadingDeg   float64 `json:"heading_deg"`
	SpeedLimitMS float64 `json:"speed_limit_ms"` // 0 means no limit
}

// Discretize slices the route into contiguous segments of the requested
// length. The segments cover the full route exactly; the last segment may be
// shorter. Grade is derived from the elevation difference between the segment
// boundaries. Discretization is deterministic and side-effect free.
func Discretize(samples []Sample, segmentLengthM float64) ([]model.Segment, error) {
	if err := validate(samples, segmentLengthM); err != nil {
		return nil, err
	}

	total := samples[len(samples)-1].DistanceM
	n := int(math.Ceil(total / segmentLengthM))
	segments := make([]model.Segment, 0, n)

	for i := 0; i < n; i++ {
		start := float64(i) * segmentLengthM
		end := math.Min(start+segmentLengthM, total)
		length := end - start
		mid := (start + end) / 2

		grade := (elevationAt(samples, end) - elevationAt(samples, start)) / length
		segments = append(segments, model.Segment{
			Index:        i,
			StartM:       start,
			DistanceM:    length,
			Grade:        grade,
			HeadingDeg:   headingAt(samples, mid),
			SpeedLimitMS: limitAt(samples, mid),
		})
	}
	return segments, nil
}

func validate(samples []Sample, segmentLengthM float64) error {
	if segmentLengthM <= 0 {
		return fmt.Errorf("%w: segment length must be positive", ErrInvalidRoute)
	}
	if len(samples) < 2 {
		return fmt.Errorf("%w: at least two samples required", ErrInvalidRoute)
	}
	if samples[0].DistanceM != 0 {
		return fmt.Errorf("%w: first sample must start at distance 0", ErrInvalidRoute)
	}
	for i, s := range samples {
		if math.IsNaN(s.ElevationM) || math.IsInf(s.ElevationM, 0) {
			return fmt.Errorf("%w: missing elevation at sample %d", ErrInvalidRoute, i)
		}
		if i > 0 && s.DistanceM <= samples[i-1].DistanceM {
			return fmt.Errorf("%w: distance not strictly increasing at sample %d", ErrInvalidRoute, i)
		}
	}
	return nil
}

// elevationAt linearly interpolates elevation at cumulative distance d.
func elevationAt(samples []Sample, d float64) float64 {
	lo, hi := bracket(samples, d)
	if lo == hi {
		return samples[lo].ElevationM
	}
	a, b := samples[lo], samples[hi]
	f := (d - a.DistanceM) / (b.DistanceM - a.DistanceM)
	return a.ElevationM + f*(b.ElevationM-a.ElevationM)
}

// limitAt returns the speed limit in force at cumulative distance d, taken
// from the last sample at or before d.
func limitAt(samples []Sample, d float64) float64 {
	lo, _ := bracket(samples, d)
	return samples[lo].SpeedLimitMS
}

// headingAt returns the travel heading at cumulative distance d.
func headingAt(samples []Sample, d float64) float64 {
	lo, _ := bracket(samples, d)
	return samples[lo].HeadingDeg
}

// bracket finds the sample indices lo <= hi surrounding distance d.
func bracket(samples []Sample, d float64) (int, int) {
	if d <= samples[0].DistanceM {
		return 0, 0
	}
	last := len(samples) - 1
	if d >= samples[last].DistanceM {
		return last, last
	}
	lo, hi := 0, last
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if samples[mid].DistanceM <= d {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo, hi
}
