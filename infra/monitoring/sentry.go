package monitoring

import (
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/msxvi/strategy/config"
	coremon "github.com/msxvi/strategy/core/monitoring"
)

// NewSentryMonitor connects error reporting to Sentry. An empty DSN disables
// reporting and returns the no-op monitor, which keeps local and CI runs
// offline.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	env := cfg.Environment
	if env == "" {
		env = "race"
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      env,
		TracesSampleRate: cfg.TracesSampleRate,
		Release:          cfg.Release,
	}); err != nil {
		return nil, err
	}
	return sentryMonitor{}, nil
}

type sentryMonitor struct{}

func (sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("service", "strategy")
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// Recover forwards a panic to Sentry, flushes, and re-panics so the process
// still crashes with the original stack.
func (sentryMonitor) Recover() {
	if r := recover(); r != nil {
		sentry.CurrentHub().Recover(r)
		sentry.Flush(2 * time.Second)
		panic(r)
	}
}

func (sentryMonitor) Flush(timeout time.Duration) { sentry.Flush(timeout) }
