package ratelimit

import "errors"

// ErrExceeded is returned by nothing in this package directly but is kept
// as the sentinel errors.Is callers can compare against when a Middleware
// ErrorHandler wants to distinguish a rate-limit rejection from other
// failures reported through the same hook.
var ErrExceeded = errors.New("rate limit exceeded")

// ErrNoBucket is returned by NewRateLimiter when neither a global bucket
// nor a per-value bucket map is supplied. A RateLimiter with no bucket
// source can never produce a verdict, so construction fails fast instead
// of silently skipping forever.
var ErrNoBucket = errors.New("ratelimit: limiter needs a global bucket or buckets_per_value")
