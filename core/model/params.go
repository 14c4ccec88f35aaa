package model

import "fmt"

// VehicleParams holds the physical parameters of the solar car. Values are
// read once at startup and treated as immutable for the whole run.
type VehicleParams struct {
	MassKg        float64 `json:"mass_kg"`         // vehicle mass including driver, kg
	DragCoeff     float64 `json:"drag_coeff"`      // aerodynamic drag coefficient
	FrontalAreaM2 float64 `json:"frontal_area_m2"` // frontal area, m²
	RollingCoeff  float64 `json:"rolling_coeff"`   // rolling resistance coefficient
	PanelAreaM2   float64 `json:"panel_area_m2"`   // solar array area, m²
	PanelEff      float64 `json:"panel_eff"`       // electrical panel efficiency in (0,1]
	BatteryJ      float64 `json:"battery_j"`       // battery energy capacity, joules
	SoCMin        float64 `json:"soc_min"`         // lower state of charge bound in [0,1]
	SoCMax        float64 `json:"soc_max"`         // upper state of charge bound in [0,1]
	AuxDrawW      float64 `json:"aux_draw_w"`      // constant auxiliary system load, watts
	DriveEff      float64 `json:"drive_eff"`       // drivetrain efficiency on traction losses in (0,1]
	AirDensity    float64 `json:"air_density"`     // kg/m³
	GravityConst  float64 `json:"gravity_const"`   // m/s²
}

// DefaultVehicleParams returns the MSXVI reference parameters.
func DefaultVehicleParams() VehicleParams {
	return VehicleParams{
		MassKg:        450.0,
		DragCoeff:     0.18,
		FrontalAreaM2: 1.357,
		RollingCoeff:  0.004,
		PanelAreaM2:   4.0,
		PanelEff:      0.243,
		BatteryJ:      40 * 3.63 * 36 * 3600,
		SoCMin:        0.0,
		SoCMax:        1.0,
		AuxDrawW:      0.0,
		DriveEff:      0.94,
		AirDensity:    1.293,
		GravityConst:  9.81,
	}
}

// Validate checks that the parameters are physically sound.
func (p VehicleParams) Validate() error {
	if p.MassKg <= 0 {
		return fmt.Errorf("mass must be positive")
	}
	if p.DragCoeff <= 0 {
		return fmt.Errorf("drag coefficient must be positive")
	}
	if p.FrontalAreaM2 <= 0 {
		return fmt.Errorf("frontal area must be positive")
	}
	if p.RollingCoeff < 0 {
		return fmt.Errorf("rolling coefficient must not be negative")
	}
	if p.PanelAreaM2 < 0 {
		return fmt.Errorf("panel area must not be negative")
	}
	if p.PanelEff < 0 || p.PanelEff > 1 {
		return fmt.Errorf("panel efficiency must be within [0,1]")
	}
	if p.BatteryJ <= 0 {
		return fmt.Errorf("battery capacity must be positive")
	}
	if p.SoCMin < 0 || p.SoCMax > 1 || p.SoCMin >= p.SoCMax {
		return fmt.Errorf("soc bounds must satisfy 0 <= soc_min < soc_max <= 1")
	}
	if p.AuxDrawW < 0 {
		return fmt.Errorf("auxiliary draw must not be negative")
	}
	if p.DriveEff <= 0 || p.DriveEff > 1 {
		return fmt.Errorf("drivetrain efficiency must be within (0,1]")
	}
	if p.AirDensity <= 0 {
		return fmt.Errorf("air density must be positive")
	}
	if p.GravityConst <= 0 {
		return fmt.Errorf("gravity must be positive")
	}
	return nil
}
