// Package ratelimit implements the rate-limit decision core of a reverse
// proxy gateway: strategy-driven identity derivation, distributed
// token-bucket accounting against a pluggable CounterStore, and
// aggregation of multiple limiters' verdicts into one admit/reject
// decision per request.
//
// The core has four moving parts: a Strategy picks an identity value and a
// Bucket for a request, a RateLimiter pairs one Strategy with one
// CounterStore and runs the store round-trip, a Manager groups limiters
// into an identity-check phase and a request-shape phase, and Middleware
// orchestrates whitelist bypass, body buffering and group evaluation around
// the HTTP request/response cycle, handing the tightest verdict to the
// Forwarder, which stamps the quota headers (see StampHeaders).
package ratelimit
