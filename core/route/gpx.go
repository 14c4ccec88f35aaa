package route

import (
	"encoding/xml"
	"fmt"
	"math"
	"os"
)

const earthRadiusM = 6371000.0

// Point is one GPX track point.
type Point struct {
	Lat  float64
	Lon  float64
	EleM float64
}

type gpxFile struct {
	Tracks []gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Segments []gpxTrackSegment `xml:"trkseg"`
}

type gpxTrackSegment struct {
	Points []gpxTrackPoint `xml:"trkpt"`
}

type gpxTrackPoint struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
	Ele float64 `xml:"ele"`
}

// LoadGPX reads the GPX file at path and returns the points of the selected
// track. All track segments of the track are concatenated in order.
func LoadGPX(path string, track int) ([]Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gpx: %w", err)
	}
	return ParseGPX(data, track)
}

// ParseGPX decodes GPX XML and returns the points of the selected track.
func ParseGPX(data []byte, track int) ([]Point, error) {
	var g gpxFile
	if err := xml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: parse gpx: %v", ErrInvalidRoute, err)
	}
	if track < 0 || track >= len(g.Tracks) {
		return nil, fmt.Errorf("%w: track %d not present (%d tracks)", ErrInvalidRoute, track, len(g.Tracks))
	}
	var pts []Point
	for _, seg := range g.Tracks[track].Segments {
		for _, p := range seg.Points {
			pts = append(pts, Point{Lat: p.Lat, Lon: p.Lon, EleM: p.Ele})
		}
	}
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: track %d has fewer than two points", ErrInvalidRoute, track)
	}
	return pts, nil
}

// Haversine returns the great-circle distance in meters between two WGS84
// points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(a))
}

// bearing returns the initial compass bearing in degrees from point 1 to 2.
func bearing(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180
	y := math.Sin(dlon) * math.Cos(rlat2)
	x := math.Cos(rlat1)*math.Sin(rlat2) - math.Sin(rlat1)*math.Cos(rlat2)*math.Cos(dlon)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// SamplesFromPoints converts GPX points into route samples with cumulative
// haversine distance, elevation and heading. Consecutive duplicate points
// (zero distance) are dropped to keep distances strictly increasing.
func SamplesFromPoints(pts []Point) ([]Sample, error) {
	if len(pts) < 2 {
		return nil, fmt.Errorf("%w: at least two points required", ErrInvalidRoute)
	}
	samples := make([]Sample, 0, len(pts))
	samples = append(samples, Sample{DistanceM: 0, ElevationM: pts[0].EleM,
		HeadingDeg: bearing(pts[0].Lat, pts[0].Lon, pts[1].Lat, pts[1].Lon)})
	cum := 0.0
	prev := pts[0]
	for _, p := range pts[1:] {
		d := Haversine(prev.Lat, prev.Lon, p.Lat, p.Lon)
		if d == 0 {
			continue
		}
		cum += d
		samples = append(samples, Sample{
			DistanceM:  cum,
			ElevationM: p.EleM,
			HeadingDeg: bearing(prev.Lat, prev.Lon, p.Lat, p.Lon),
		})
		prev = p
	}
	if len(samples) < 2 {
		return nil, fmt.Errorf("%w: all points collapse to one location", ErrInvalidRoute)
	}
	return samples, nil
}
