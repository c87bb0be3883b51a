// Package logrusadapter adapts a logrus logger to ratelimit.Logger. Every
// entry it emits carries a component=ratelimit field, so the gateway's
// decision-flow lines (body-buffering failures, quota rejection, counter
// store failures) are filterable alongside whatever else the embedding
// application logs through the same logrus instance.
package logrusadapter

import (
	ratelimit "github.com/ratelimitgw/gateway"
	"github.com/sirupsen/logrus"
)

var _ ratelimit.Logger = (*LogrusLogger)(nil)

// LogrusLogger implements ratelimit.Logger using logrus.
type LogrusLogger struct {
	logger *logrus.Entry
}

// New creates a new LogrusLogger. If nil is passed, uses a fresh logger from
// logrus.New() with default settings.
func New(l *logrus.Logger) *LogrusLogger {
	if l == nil {
		l = logrus.New()
	}
	return &LogrusLogger{
		logger: l.WithField("component", "ratelimit"),
	}
}

// Debugf logs a debug-level message, e.g. limiter.go's
// "ratelimit: init_if_absent failed for %s: %v (ignored, ...)".
func (l *LogrusLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// Errorf logs an error-level message, e.g. cmd/gateway's
// "gateway: reload rejected, keeping previous manager: %v".
func (l *LogrusLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}
