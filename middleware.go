package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/ratelimitgw/gateway/internal/metrics"
)

// Forwarder is the opaque reverse-proxy capability Middleware forwards
// admitted requests to. internal/proxy implements it on top of
// net/http/httputil.ReverseProxy; any http.Handler works, which makes
// Middleware trivial to test with an httptest-backed stub.
type Forwarder interface {
	http.Handler
}

// defaultMaxBodyBytes bounds request-body buffering so an unbounded body
// can't be used to exhaust memory ahead of any limiter running. 10 MiB
// comfortably covers typical JSON/form payloads fronted by this gateway.
const defaultMaxBodyBytes = 10 << 20

type verdictContextKey struct{}

// Middleware wires the whitelist check, body buffering and group
// evaluation together around a Forwarder, implementing the gateway's
// full per-request decision flow.
type Middleware struct {
	manager      *Manager
	forwarder    Forwarder
	logger       Logger
	errorHandler ErrorHandler
	maxBodyBytes int64
}

// MiddlewareOption configures optional Middleware behavior.
type MiddlewareOption func(*Middleware)

// WithLogger attaches a Logger for buffering failures and rejection
// decisions. Whitelist hits are not logged.
func WithLogger(logger Logger) MiddlewareOption {
	return func(m *Middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithErrorHandler overrides how rejections and hard failures are written
// to the client.
func WithErrorHandler(h ErrorHandler) MiddlewareOption {
	return func(m *Middleware) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// WithMaxBodyBytes overrides the request-body buffering cap. A value <= 0
// means unbounded, which is not recommended outside of tests.
func WithMaxBodyBytes(n int64) MiddlewareOption {
	return func(m *Middleware) {
		m.maxBodyBytes = n
	}
}

// NewMiddleware builds a Middleware around a Manager and a Forwarder.
func NewMiddleware(manager *Manager, forwarder Forwarder, opts ...MiddlewareOption) *Middleware {
	m := &Middleware{
		manager:      manager,
		forwarder:    forwarder,
		logger:       noopLogger{},
		errorHandler: DefaultErrorHandler,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ServeHTTP implements the gateway's decision flow: whitelist bypass,
// body buffering, two-group limiter evaluation with short-circuit reject,
// then forward. On the admitted path the tightest verdict is attached to
// the outbound request's context for the Forwarder to stamp; Middleware
// itself never writes response headers.
func (m *Middleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stop := metrics.Timer()
	peerIP := peerAddr(r)

	if m.manager.IsWhitelisted(peerIP) {
		metrics.ObserveDecision("whitelisted", "")
		m.forwarder.ServeHTTP(w, r)
		stop(http.StatusOK)
		return
	}

	body, tooLarge, err := ReadBody(r, m.maxBodyBytes)
	if err != nil {
		m.logger.Errorf("ratelimit: failed to buffer request body: %v", err)
		m.errorHandler(w, r, http.StatusInternalServerError, err)
		stop(http.StatusInternalServerError)
		return
	}
	if tooLarge {
		m.errorHandler(w, r, http.StatusRequestEntityTooLarge, nil)
		stop(http.StatusRequestEntityTooLarge)
		return
	}

	safe := NewSafeRequest(r, body)

	tightest, exceeded := m.manager.Evaluate(r.Context(), safe, peerIP)
	if exceeded {
		m.logger.Debugf("ratelimit: rejecting request from %s to %s", peerIP, safe.URL.Path)
		metrics.ObserveDecision("rejected", string(tightest.Kind))
		m.errorHandler(w, r, http.StatusTooManyRequests, ErrExceeded)
		stop(http.StatusTooManyRequests)
		return
	}

	outcome, kind := "admitted", ""
	if tightest != nil {
		kind = string(tightest.Kind)
	}
	metrics.ObserveDecision(outcome, kind)

	outbound := safe.Rebuild(r.Context())
	if tightest != nil {
		ctx := context.WithValue(outbound.Context(), verdictContextKey{}, *tightest)
		outbound = outbound.WithContext(ctx)
	}

	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	m.forwarder.ServeHTTP(sw, outbound)
	stop(sw.status)
}

// statusWriter records the status code a Forwarder wrote, so ServeHTTP can
// report it to metrics.RequestDuration without the Forwarder interface
// itself needing to expose one.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// VerdictFromContext retrieves the tightest verdict Middleware attached to
// an outbound request's context, if any. A Forwarder's response-rewriting
// hook (e.g. httputil.ReverseProxy.ModifyResponse) uses this to stamp
// X-RateLimit-* headers on the response it's about to return.
func VerdictFromContext(ctx context.Context) (LimitVerdict, bool) {
	v, ok := ctx.Value(verdictContextKey{}).(LimitVerdict)
	return v, ok
}

// StampHeaders writes X-RateLimit-Limit and X-RateLimit-Remaining from v
// onto h, per the gateway's response contract for admitted requests.
func StampHeaders(h http.Header, v LimitVerdict) {
	h.Set("X-RateLimit-Limit", strconv.FormatUint(uint64(v.Total), 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(int64(v.Remaining), 10))
}

// peerAddr extracts the caller's IP (without port) from a request's
// RemoteAddr, falling back to the raw value if it isn't a host:port pair.
func peerAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
