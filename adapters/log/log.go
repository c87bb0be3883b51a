// Package stdlogadapter adapts the standard library's log.Logger to
// ratelimit.Logger for callers who don't want to pull in a structured
// logging dependency. It carries the gateway's decision-flow events —
// body-buffering and rejection lines from middleware.go, counter store
// failures from limiter.go, config reloads from cmd/gateway — exactly as
// those callers format them; this adapter only routes and tags them.
package stdlogadapter

import (
	"log"

	ratelimit "github.com/ratelimitgw/gateway"
)

var _ ratelimit.Logger = (*StdLogger)(nil)

// StdLogger implements ratelimit.Logger using the standard library's log
// package.
type StdLogger struct {
	logger *log.Logger
}

// New creates a new StdLogger. If nil is passed, uses the default logger.
func New(l *log.Logger) *StdLogger {
	if l == nil {
		l = log.Default()
	}
	return &StdLogger{
		logger: l,
	}
}

// Debugf logs a debug-level message, e.g. a reload from cmd/gateway's
// config.Watch loop ("gateway: reloaded configuration from %s").
func (s *StdLogger) Debugf(format string, args ...interface{}) {
	s.logger.Printf("[DEBUG] component=ratelimit "+format, args...)
}

// Errorf logs an error-level message, e.g. a counter store failure from
// limiter.go ("ratelimit: counter store pool exhausted for %s...").
func (s *StdLogger) Errorf(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] component=ratelimit "+format, args...)
}
