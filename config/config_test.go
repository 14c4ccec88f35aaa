package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `vehicle:
  mass_kg: 450
  drag_coeff: 0.18
  frontal_area_m2: 1.357
  rolling_coeff: 0.004
  panel_area_m2: 4.0
  panel_eff: 0.243
  battery_j: 18817920
  soc_max: 1.0
  drive_eff: 0.94
  air_density: 1.293
  gravity_const: 9.81
route:
  samples:
    - distance_m: 0
      elevation_m: 100
    - distance_m: 5000
      elevation_m: 120
  segment_length_m: 500
environment:
  source:
    type: "ramp"
    conf:
      start_wm2: 200
      end_wm2: 900
      steps: 10
      dt: 600
  cache: true
objective:
  mode: "fsgp"
  time_budget_s: 10800
  initial_soc: 0.9
optimizer:
  strategy: "dp"
  vmin_ms: 8
  vmax_ms: 22
metrics:
  sinks:
    - type: "nop"
telemetry:
  enabled: true
  mqtt:
    broker: "tcp://localhost:1883"
    client_id: "strategy"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"mass", cfg.Vehicle.MassKg, 450.0},
		{"battery", cfg.Vehicle.BatteryJ, 18817920.0},
		{"segment_length", cfg.Route.SegmentLengthM, 500.0},
		{"samples", len(cfg.Route.Samples), 2},
		{"env_type", cfg.Environment.Source.Type, "ramp"},
		{"env_cache", cfg.Environment.Cache, true},
		{"mode", cfg.Objective.Mode, "fsgp"},
		{"budget", cfg.Objective.TimeBudgetS, 10800.0},
		{"initial_soc", cfg.Objective.InitialSoC, 0.9},
		{"strategy", cfg.Optimizer.Strategy, "dp"},
		{"vmin", cfg.Optimizer.VMinMS, 8.0},
		{"vmax", cfg.Optimizer.VMaxMS, 22.0},
		{"sinks", len(cfg.Metrics.Sinks), 1},
		{"telemetry", cfg.Telemetry.Enabled, true},
		{"topic_default", cfg.Telemetry.Topic, "strategy/plan"},
		{"broker", cfg.Telemetry.MQTT.Broker, "tcp://localhost:1883"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `route:
  samples:
    - distance_m: 0
      elevation_m: 0
    - distance_m: 2000
      elevation_m: 10
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Vehicle.MassKg != 450 {
		t.Fatalf("vehicle defaults not applied: %+v", cfg.Vehicle)
	}
	if cfg.Route.SegmentLengthM != 1000 {
		t.Fatalf("segment length default = %v", cfg.Route.SegmentLengthM)
	}
	if cfg.Objective.Mode != "asc" || cfg.Objective.InitialSoC != 1.0 {
		t.Fatalf("objective defaults not applied: %+v", cfg.Objective)
	}
	if cfg.Optimizer.Strategy != "neldermead" {
		t.Fatalf("optimizer default = %q", cfg.Optimizer.Strategy)
	}
	if cfg.Environment.Source.Type != "ramp" {
		t.Fatalf("environment default = %+v", cfg.Environment.Source)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `route:
  samples:
    - distance_m: 0
      elevation_m: 0
    - distance_m: 2000
      elevation_m: 10
optimizer:
  strategy: "neldermead"
`)
	t.Setenv("K_OPTIMIZER__STRATEGY", "dp")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Optimizer.Strategy != "dp" {
		t.Fatalf("env override ignored: %q", cfg.Optimizer.Strategy)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("expected unsupported format error")
	}

	path := writeConfig(t, `objective:
  mode: "fsgp"
route:
  samples:
    - distance_m: 0
      elevation_m: 0
    - distance_m: 2000
      elevation_m: 10
`)
	if _, err := Load(path); err == nil {
		t.Fatal("fsgp without a time budget should fail validation")
	}

	path = writeConfig(t, `optimizer:
  strategy: "dp"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("missing route source should fail validation")
	}
}
