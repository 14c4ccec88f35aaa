package env

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MockProfile is a YAML scenario file carrying per-step irradiance and wind
// arrays plus the timestep they were sampled at. These files drive test
// scenarios until a live weather feed is connected; route geometry comes
// from the route configuration, not the profile.
type MockProfile struct {
	DT     float64   `yaml:"dt"`
	GHI    []float64 `yaml:"ghi"`
	WindMS []float64 `yaml:"wind_ms"`
}

// LoadProfile reads a mock scenario YAML file.
func LoadProfile(path string) (*MockProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p MockProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if p.DT <= 0 {
		p.DT = 1800
	}
	if len(p.GHI) < 2 {
		return nil, fmt.Errorf("profile needs at least two ghi steps")
	}
	return &p, nil
}

// Oracle builds a table oracle from the profile's irradiance and wind series.
func (p *MockProfile) Oracle() (*Table, error) {
	rows := make([]Row, len(p.GHI))
	for i, g := range p.GHI {
		rows[i] = Row{IrradianceWM2: g}
		if i < len(p.WindMS) {
			rows[i].WindMS = p.WindMS[i]
		}
	}
	return NewTable(p.DT, rows)
}
