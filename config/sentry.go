package config

// SentryConfig enables crash and error reporting. Leave DSN empty to run
// without it.
type SentryConfig struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	// TracesSampleRate is the fraction of transactions traced, 0 to 1.
	TracesSampleRate float64 `json:"traces_sample_rate"`
	Release          string  `json:"release"`
}
