package env

import (
	"fmt"

	"github.com/msxvi/strategy/core/model"
)

// Table is a time-indexed oracle backed by rows sampled at a fixed timestep.
// Values are linearly interpolated between rows. The covered range is
// [0, (len(rows)-1)*dt]; queries outside it fail with ErrDataUnavailable.
type Table struct {
	dt   float64
	rows []Row
}

// Row holds the ambient conditions at one table timestep.
type Row struct {
	IrradianceWM2 float64 `json:"ghi"`
	WindMS        float64 `json:"wind_ms"`
	WindHeading   float64 `json:"wind_heading_deg"`
	AmbientC      float64 `json:"ambient_c"`
}

// NewTable builds a table oracle from explicit rows.
func NewTable(dt float64, rows []Row) (*Table, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("table timestep must be positive")
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("table needs at least two rows")
	}
	cp := make([]Row, len(rows))
	copy(cp, rows)
	return &Table{dt: dt, rows: cp}, nil
}

// NewRamp builds a table whose irradiance ramps linearly from start to end
// over n steps, mirroring the mock GHI profiles used before live weather
// data is wired in. Wind and temperature stay zero.
func NewRamp(startWM2, endWM2 float64, n int, dt float64) (*Table, error) {
	if n < 2 {
		return nil, fmt.Errorf("ramp needs at least two steps")
	}
	rows := make([]Row, n)
	for i := range rows {
		f := float64(i) / float64(n-1)
		rows[i] = Row{IrradianceWM2: startWM2 + f*(endWM2-startWM2)}
	}
	return NewTable(dt, rows)
}

// CoveredS returns the last elapsed time covered by the table.
func (t *Table) CoveredS() float64 {
	return float64(len(t.rows)-1) * t.dt
}

// Sample interpolates the table at the given elapsed time.
func (t *Table) Sample(segmentIndex int, elapsedS float64) (model.EnvironmentSample, error) {
	if elapsedS < 0 || elapsedS > t.CoveredS() {
		return model.EnvironmentSample{}, fmt.Errorf("%w: t=%.1fs outside [0, %.1fs]",
			ErrDataUnavailable, elapsedS, t.CoveredS())
	}
	idx := int(elapsedS / t.dt)
	if idx >= len(t.rows)-1 {
		idx = len(t.rows) - 2
	}
	f := (elapsedS - float64(idx)*t.dt) / t.dt
	a, b := t.rows[idx], t.rows[idx+1]
	return model.EnvironmentSample{
		SegmentIndex:  segmentIndex,
		ElapsedS:      elapsedS,
		IrradianceWM2: lerp(a.IrradianceWM2, b.IrradianceWM2, f),
		Wind: model.Wind{
			SpeedMS:    lerp(a.WindMS, b.WindMS, f),
			HeadingDeg: lerp(a.WindHeading, b.WindHeading, f),
		},
		AmbientC: lerp(a.AmbientC, b.AmbientC, f),
	}, nil
}

func lerp(a, b, f float64) float64 {
	return a + f*(b-a)
}
