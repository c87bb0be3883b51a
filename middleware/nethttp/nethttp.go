// Package nethttp adapts the gateway's rate-limit Middleware to the
// standard net/http middleware shape (func(http.Handler) http.Handler),
// for callers who want to compose the decision pipeline into their own
// handler chain instead of running cmd/gateway as the standalone proxy.
//
// Example usage:
//
//	manager := ratelimit.NewManager(whitelist, limiters)
//	wrapped := nethttp.Middleware(manager)(myHandler)
//	http.ListenAndServe(":8080", wrapped)
package nethttp

import (
	"net/http"

	ratelimit "github.com/ratelimitgw/gateway"
)

// Middleware returns a net/http middleware that runs the gateway's full
// decision flow — whitelist bypass, body buffering, two-group limiter
// evaluation, short-circuit reject — ahead of next. Unlike
// internal/proxy's Forwarder, next here is any downstream http.Handler, so
// this adapter is useful both for the proxy itself and for embedding rate
// limiting directly in front of a locally-served API.
func Middleware(manager *ratelimit.Manager, opts ...ratelimit.MiddlewareOption) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ratelimit.NewMiddleware(manager, next, opts...)
	}
}
