package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/msxvi/strategy/core/metrics"
	"github.com/msxvi/strategy/core/model"
	"github.com/msxvi/strategy/core/optimizer"
)

type Config struct {
	Vehicle     model.VehicleParams `json:"vehicle"`
	Route       RouteConfig         `json:"route"`
	Environment EnvironmentConfig   `json:"environment"`
	Objective   ObjectiveConfig     `json:"objective"`
	Optimizer   optimizer.Config    `json:"optimizer"`
	Metrics     metrics.Config      `json:"metrics"`
	Telemetry   TelemetryConfig     `json:"telemetry"`
	Export      ExportConfig        `json:"export"`
	Sentry      SentryConfig        `json:"sentry"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills in the reference vehicle and search parameters for
// anything the file leaves out.
func (c *Config) SetDefaults() {
	if c.Vehicle.MassKg == 0 {
		c.Vehicle = model.DefaultVehicleParams()
	}
	c.Route.SetDefaults()
	c.Environment.SetDefaults()
	c.Objective.SetDefaults()
	c.Optimizer.SetDefaults()
	c.Telemetry.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Vehicle.Validate(); err != nil {
		return fmt.Errorf("vehicle: %w", err)
	}
	if err := c.Route.Validate(); err != nil {
		return fmt.Errorf("route: %w", err)
	}
	if err := c.Objective.Validate(); err != nil {
		return fmt.Errorf("objective: %w", err)
	}
	if err := c.Optimizer.Validate(); err != nil {
		return fmt.Errorf("optimizer: %w", err)
	}
	return nil
}
