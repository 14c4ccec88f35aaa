package monitoring

import "time"

// Monitor reports errors and panics to an external tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

// NopMonitor discards everything. It is the default until Init is called.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init installs the process-wide monitor. A nil monitor keeps the current
// one so callers can pass a factory result unchecked.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException forwards err and tags to the installed monitor.
func CaptureException(err error, tags map[string]string) {
	current.CaptureException(err, tags)
}

// Recover reports a panic in the calling goroutine. Use with defer.
func Recover() {
	current.Recover()
}

// Flush blocks until buffered events are sent or the timeout expires.
func Flush(d time.Duration) {
	current.Flush(d)
}
