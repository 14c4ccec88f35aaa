package config

import "github.com/msxvi/strategy/core/factory"

// EnvironmentConfig selects the forecast oracle feeding the simulation.
type EnvironmentConfig struct {
	Source factory.ModuleConfig `json:"source"`
	// Cache memoizes oracle lookups, useful for the level-grid search which
	// revisits the same states many times.
	Cache bool `json:"cache"`
}

// SetDefaults falls back to a steady clear-sky ramp over a full race day.
func (c *EnvironmentConfig) SetDefaults() {
	if c.Source.Type == "" {
		c.Source = factory.ModuleConfig{
			Type: "ramp",
			Conf: map[string]any{
				"start_wm2": 800.0,
				"end_wm2":   800.0,
				"steps":     48,
				"dt":        1800.0,
			},
		}
	}
}
