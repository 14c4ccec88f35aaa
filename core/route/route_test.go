package route

import (
	"errors"
	"math"
	"testing"

	"github.com/msxvi/strategy/core/model"
)

func flatSamples(lengthM float64) []Sample {
	return []Sample{
		{DistanceM: 0, ElevationM: 100},
		{DistanceM: lengthM, ElevationM: 100},
	}
}

// Discretizing a route of length L must yield segments whose distances sum to
// exactly L.
func TestDiscretizeCoversFullLength(t *testing.T) {
	const length = 10500.0
	segs, err := Discretize(flatSamples(length), 1000)
	if err != nil {
		t.Fatalf("discretize: %v", err)
	}
	if len(segs) != 11 {
		t.Fatalf("expected 11 segments got %d", len(segs))
	}
	if got := model.RouteLength(segs); math.Abs(got-length) > 1e-9 {
		t.Fatalf("segment lengths sum to %v, want %v", got, length)
	}
	// Last segment is the 500 m remainder.
	if last := segs[len(segs)-1]; math.Abs(last.DistanceM-500) > 1e-9 {
		t.Fatalf("last segment length %v, want 500", last.DistanceM)
	}
	// Segments are contiguous.
	for i := 1; i < len(segs); i++ {
		if math.Abs(segs[i].StartM-segs[i-1].EndM()) > 1e-9 {
			t.Fatalf("gap between segments %d and %d", i-1, i)
		}
	}
}

func TestDiscretizeGrade(t *testing.T) {
	// 100 m of climb over 2 km: constant 5% grade.
	samples := []Sample{
		{DistanceM: 0, ElevationM: 0},
		{DistanceM: 2000, ElevationM: 100},
	}
	segs, err := Discretize(samples, 500)
	if err != nil {
		t.Fatalf("discretize: %v", err)
	}
	for _, s := range segs {
		if math.Abs(s.Grade-0.05) > 1e-9 {
			t.Fatalf("segment %d grade %v, want 0.05", s.Index, s.Grade)
		}
	}
}

func TestDiscretizeNonMonotonicDistance(t *testing.T) {
	samples := []Sample{
		{DistanceM: 0, ElevationM: 10},
		{DistanceM: 500, ElevationM: 12},
		{DistanceM: 400, ElevationM: 13},
	}
	_, err := Discretize(samples, 100)
	if !errors.Is(err, ErrInvalidRoute) {
		t.Fatalf("expected ErrInvalidRoute got %v", err)
	}
}

func TestDiscretizeMissingElevation(t *testing.T) {
	samples := []Sample{
		{DistanceM: 0, ElevationM: 10},
		{DistanceM: 500, ElevationM: math.NaN()},
	}
	_, err := Discretize(samples, 100)
	if !errors.Is(err, ErrInvalidRoute) {
		t.Fatalf("expected ErrInvalidRoute got %v", err)
	}
}

func TestDiscretizeDeterministic(t *testing.T) {
	samples := []Sample{
		{DistanceM: 0, ElevationM: 50},
		{DistanceM: 1200, ElevationM: 80, SpeedLimitMS: 22},
		{DistanceM: 3000, ElevationM: 20},
	}
	a, err := Discretize(samples, 250)
	if err != nil {
		t.Fatalf("discretize: %v", err)
	}
	b, err := Discretize(samples, 250)
	if err != nil {
		t.Fatalf("discretize: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("segment %d differs between runs", i)
		}
	}
}

func TestDiscretizeSpeedLimit(t *testing.T) {
	samples := []Sample{
		{DistanceM: 0, ElevationM: 0, SpeedLimitMS: 30},
		{DistanceM: 1000, ElevationM: 0, SpeedLimitMS: 15},
		{DistanceM: 2000, ElevationM: 0},
	}
	segs, err := Discretize(samples, 1000)
	if err != nil {
		t.Fatalf("discretize: %v", err)
	}
	if segs[0].SpeedLimitMS != 30 {
		t.Fatalf("first segment limit %v, want 30", segs[0].SpeedLimitMS)
	}
	if segs[1].SpeedLimitMS != 15 {
		t.Fatalf("second segment limit %v, want 15", segs[1].SpeedLimitMS)
	}
}

func TestHaversine(t *testing.T) {
	// One degree of latitude is roughly 111.2 km.
	d := Haversine(45.0, 7.0, 46.0, 7.0)
	if math.Abs(d-111195) > 200 {
		t.Fatalf("unexpected distance %v", d)
	}
	if Haversine(45, 7, 45, 7) != 0 {
		t.Fatal("identical points must be zero distance")
	}
}

const sampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test">
  <trk><name>stage</name>
    <trkseg>
      <trkpt lat="36.1627" lon="-86.7816"><ele>120.0</ele></trkpt>
      <trkpt lat="36.1700" lon="-86.7900"><ele>130.0</ele></trkpt>
      <trkpt lat="36.1800" lon="-86.8000"><ele>125.0</ele></trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestParseGPX(t *testing.T) {
	pts, err := ParseGPX([]byte(sampleGPX), 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(pts) != 3 {
		t.Fatalf("expected 3 points got %d", len(pts))
	}
	if pts[1].EleM != 130 {
		t.Fatalf("unexpected elevation %v", pts[1].EleM)
	}
	if _, err := ParseGPX([]byte(sampleGPX), 1); !errors.Is(err, ErrInvalidRoute) {
		t.Fatalf("expected ErrInvalidRoute for missing track, got %v", err)
	}
}

func TestSamplesFromPoints(t *testing.T) {
	pts, err := ParseGPX([]byte(sampleGPX), 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	samples, err := SamplesFromPoints(pts)
	if err != nil {
		t.Fatalf("samples: %v", err)
	}
	if samples[0].DistanceM != 0 {
		t.Fatal("first sample must start at zero")
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].DistanceM <= samples[i-1].DistanceM {
			t.Fatalf("distances not strictly increasing at %d", i)
		}
	}
	// The resulting samples must be valid discretizer input.
	if _, err := Discretize(samples, 200); err != nil {
		t.Fatalf("discretize gpx samples: %v", err)
	}
}
