// Package zerologadapter adapts a zerolog logger to ratelimit.Logger,
// tagging every entry with a component=ratelimit field the way
// tbourn-chatbot's request-scoped loggers tag theirs with correlation
// IDs, so the gateway's decision-flow lines sort out in a shared log
// stream.
package zerologadapter

import (
	ratelimit "github.com/ratelimitgw/gateway"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var _ ratelimit.Logger = (*ZerologLogger)(nil)

// ZerologLogger implements ratelimit.Logger using zerolog.
type ZerologLogger struct {
	logger zerolog.Logger
}

// New creates a new ZerologLogger. If nil is passed, uses zerolog's global logger.
func New(l *zerolog.Logger) *ZerologLogger {
	if l == nil {
		l = &log.Logger
	}
	return &ZerologLogger{
		logger: l.With().Str("component", "ratelimit").Logger(),
	}
}

// Debugf logs a debug-level message, e.g. cmd/gateway's
// "gateway: listening on %s, forwarding to %s".
func (z *ZerologLogger) Debugf(format string, args ...interface{}) {
	z.logger.Debug().Msgf(format, args...)
}

// Errorf logs an error-level message, e.g. middleware.go's
// "ratelimit: failed to buffer request body: %v".
func (z *ZerologLogger) Errorf(format string, args ...interface{}) {
	z.logger.Error().Msgf(format, args...)
}
