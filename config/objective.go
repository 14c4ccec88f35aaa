package config

import "fmt"

// ObjectiveConfig selects the race format and the starting battery state.
type ObjectiveConfig struct {
	// Mode is "asc" (minimize time over the full route) or "fsgp"
	// (maximize distance within the time budget).
	Mode        string  `json:"mode"`
	TimeBudgetS float64 `json:"time_budget_s"`
	InitialSoC  float64 `json:"initial_soc"`
}

// SetDefaults applies the cross-country format with a full pack.
func (c *ObjectiveConfig) SetDefaults() {
	if c.Mode == "" {
		c.Mode = "asc"
	}
	if c.InitialSoC == 0 {
		c.InitialSoC = 1.0
	}
}

// Validate checks the mode and its required settings.
func (c ObjectiveConfig) Validate() error {
	switch c.Mode {
	case "asc":
	case "fsgp":
		if c.TimeBudgetS <= 0 {
			return fmt.Errorf("fsgp mode requires a positive time_budget_s")
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.InitialSoC < 0 || c.InitialSoC > 1 {
		return fmt.Errorf("initial_soc must lie in [0, 1]")
	}
	return nil
}
