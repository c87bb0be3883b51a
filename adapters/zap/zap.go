// Package zapadapter adapts a zap logger to ratelimit.Logger. Entries
// carry a component="ratelimit" field so the gateway's decision-flow
// lines sort out from whatever else the embedding service logs through
// the same zap core.
package zapadapter

import (
	ratelimit "github.com/ratelimitgw/gateway"
	"go.uber.org/zap"
)

var _ ratelimit.Logger = (*ZapLogger)(nil)

// ZapLogger is an adapter that implements the ratelimit.Logger interface
// using a zap.SugaredLogger internally.
type ZapLogger struct {
	logger *zap.SugaredLogger
}

// New creates a new ZapLogger from a zap.Logger.
//
// If a nil logger is provided, it uses zap.NewNop() internally, which
// is a no-op logger that discards all messages.
//
// Example:
//
//	zapLogger := zapadapter.New(logger)
func New(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{logger: l.Sugar().With("component", "ratelimit")}
}

// Debugf logs a debug-level message, e.g. middleware.go's
// "ratelimit: rejecting request from %s to %s".
//
// Example:
//
//	zapLogger.Debugf("ratelimit: rejecting request from %s to %s", peerIP, path)
func (z *ZapLogger) Debugf(format string, args ...interface{}) {
	z.logger.Debugf(format, args...)
}

// Errorf logs an error-level message, e.g. limiter.go's
// "ratelimit: counter store pool exhausted for %s, skipping limiter: %v".
//
// Example:
//
//	zapLogger.Errorf("ratelimit: counter store pool exhausted for %s, skipping limiter: %v", key, err)
func (z *ZapLogger) Errorf(format string, args ...interface{}) {
	z.logger.Errorf(format, args...)
}
