// Package export renders optimized race plans for drivers and dashboards.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/msxvi/strategy/core/model"
	"github.com/msxvi/strategy/core/objective"
	"github.com/msxvi/strategy/core/route"
)

// Row is one driven segment of the race plan.
type Row struct {
	Segment   int     `json:"segment"`
	StartM    float64 `json:"start_m"`
	DistanceM float64 `json:"distance_m"`
	GradeDeg  float64 `json:"grade_deg"`
	SpeedMS   float64 `json:"speed_ms"`
	ElapsedS  float64 `json:"elapsed_s"`
	SoC       float64 `json:"soc"`
	NetW      float64 `json:"net_w"`
	Color     string  `json:"color"`
}

// BuildPlan joins the evaluated trace with the route geometry into plan rows.
func BuildPlan(segs []model.Segment, points []objective.TracePoint, vminMS, vmaxMS float64) []Row {
	rows := make([]Row, 0, len(points))
	for _, p := range points {
		row := Row{
			Segment:  p.SegmentIndex,
			SpeedMS:  p.SpeedMS,
			ElapsedS: p.ElapsedS,
			SoC:      p.SoC,
			NetW:     p.Powers.NetW,
			Color:    ColorForSpeed(p.SpeedMS, vminMS, vmaxMS),
		}
		if p.SegmentIndex < len(segs) {
			seg := segs[p.SegmentIndex]
			row.StartM = seg.StartM
			row.DistanceM = seg.DistanceM
			row.GradeDeg = seg.GradeAngle() * 180 / math.Pi
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteJSON writes the plan to w in JSON format.
func WriteJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	return enc.Encode(rows)
}

// WriteCSV writes the plan to w in CSV format.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"segment", "start_m", "distance_m", "grade_deg", "speed_ms", "elapsed_s", "soc", "net_w", "color"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Segment),
			strconv.FormatFloat(r.StartM, 'f', -1, 64),
			strconv.FormatFloat(r.DistanceM, 'f', -1, 64),
			strconv.FormatFloat(r.GradeDeg, 'f', -1, 64),
			strconv.FormatFloat(r.SpeedMS, 'f', -1, 64),
			strconv.FormatFloat(r.ElapsedS, 'f', -1, 64),
			strconv.FormatFloat(r.SoC, 'f', -1, 64),
			strconv.FormatFloat(r.NetW, 'f', -1, 64),
			r.Color,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var colorStops = []struct {
	t float64
	r, g, b int
}{
	{0.00, 0, 0, 255},
	{0.25, 0, 255, 255},
	{0.50, 0, 255, 0},
	{0.75, 255, 255, 0},
	{1.00, 255, 0, 0},
}

// ColorForSpeed maps a speed onto a blue-to-red gradient between vmin and
// vmax and returns the hex color code.
func ColorForSpeed(v, vminMS, vmaxMS float64) string {
	t := (v - vminMS) / math.Max(vmaxMS-vminMS, 1e-9)
	t = math.Min(math.Max(t, 0), 1)
	for i := 1; i < len(colorStops); i++ {
		if t > colorStops[i].t {
			continue
		}
		s0, s1 := colorStops[i-1], colorStops[i]
		u := (t - s0.t) / math.Max(s1.t-s0.t, 1e-9)
		r := s0.r + int(u*float64(s1.r-s0.r))
		g := s0.g + int(u*float64(s1.g-s0.g))
		b := s0.b + int(u*float64(s1.b-s0.b))
		return fmt.Sprintf("#%02x%02x%02x", r, g, b)
	}
	return "#ff0000"
}

// GrafanaSegment is one colored polyline segment for map dashboards.
type GrafanaSegment struct {
	Segment  int     `json:"segment"`
	LatStart float64 `json:"lat_start"`
	LonStart float64 `json:"lon_start"`
	LatEnd   float64 `json:"lat_end"`
	LonEnd   float64 `json:"lon_end"`
	GradeDeg float64 `json:"grade_deg"`
	SpeedMS  float64 `json:"speed_mps"`
	Color    string  `json:"color"`
}

// GrafanaDoc is the document consumed by the map panel.
type GrafanaDoc struct {
	Segments []GrafanaSegment `json:"segments"`
	Meta     GrafanaMeta      `json:"meta"`
}

type GrafanaMeta struct {
	VMin float64 `json:"vmin"`
	VMax float64 `json:"vmax"`
}

// GrafanaJSON colors the raw GPX polyline with the planned speeds. GPX
// hops are much shorter than plan segments, so each hop takes the speed of
// the plan segment containing its midpoint along the route.
func GrafanaJSON(pts []route.Point, segs []model.Segment, speeds []float64, vminMS, vmaxMS float64) (GrafanaDoc, error) {
	if len(pts) < 2 {
		return GrafanaDoc{}, fmt.Errorf("at least two points required")
	}
	if len(segs) == 0 || len(speeds) == 0 {
		return GrafanaDoc{}, fmt.Errorf("at least one plan segment and speed required")
	}
	doc := GrafanaDoc{Meta: GrafanaMeta{VMin: vminMS, VMax: vmaxMS}}
	cum := 0.0
	si := 0
	for i := 0; i < len(pts)-1; i++ {
		a, b := pts[i], pts[i+1]
		d := route.Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
		mid := cum + d/2
		for si+1 < len(segs) && mid >= segs[si].StartM+segs[si].DistanceM {
			si++
		}
		v := speeds[min(si, len(speeds)-1)]
		grade := 0.0
		if d > 0 {
			grade = math.Atan((b.EleM-a.EleM)/d) * 180 / math.Pi
		}
		doc.Segments = append(doc.Segments, GrafanaSegment{
			Segment:  i,
			LatStart: a.Lat,
			LonStart: a.Lon,
			LatEnd:   b.Lat,
			LonEnd:   b.Lon,
			GradeDeg: grade,
			SpeedMS:  v,
			Color:    ColorForSpeed(v, vminMS, vmaxMS),
		})
		cum += d
	}
	return doc, nil
}

// WriteGrafanaJSON writes the colored polyline document to w.
func WriteGrafanaJSON(w io.Writer, pts []route.Point, segs []model.Segment, speeds []float64, vminMS, vmaxMS float64) error {
	doc, err := GrafanaJSON(pts, segs, speeds, vminMS, vmaxMS)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
