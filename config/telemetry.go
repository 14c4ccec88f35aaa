package config

import "github.com/msxvi/strategy/infra/mqtt"

// TelemetryConfig publishes the winning plan to the team's MQTT broker.
type TelemetryConfig struct {
	Enabled bool        `json:"enabled"`
	Topic   string      `json:"topic"`
	MQTT    mqtt.Config `json:"mqtt"`
}

func (c *TelemetryConfig) SetDefaults() {
	if c.Topic == "" {
		c.Topic = "strategy/plan"
	}
}
