package ratelimit

import (
	"context"

	"github.com/ratelimitgw/gateway/internal/metrics"
)

// RateLimiter pairs one Strategy with its bucket configuration and a
// shared CounterStore handle. It is immutable after construction; all
// mutable state — the actual token counts — lives in the store.
type RateLimiter struct {
	strategy Strategy
	global   *Bucket
	perValue map[string]Bucket
	store    CounterStore
	logger   Logger
}

// NewRateLimiter builds a RateLimiter. Construction fails if neither
// global nor perValue is supplied: a limiter with no bucket source can
// never produce a verdict, so this is rejected up front rather than
// silently skipping every request forever.
func NewRateLimiter(strategy Strategy, global *Bucket, perValue map[string]Bucket, store CounterStore, opts ...LimiterOption) (*RateLimiter, error) {
	if global == nil && len(perValue) == 0 {
		return nil, ErrNoBucket
	}

	rl := &RateLimiter{
		strategy: strategy,
		global:   global,
		perValue: perValue,
		store:    store,
		logger:   noopLogger{},
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl, nil
}

// LimiterOption configures optional RateLimiter behavior.
type LimiterOption func(*RateLimiter)

// WithLimiterLogger attaches a Logger used to report store failures and
// skip decisions for this limiter.
func WithLimiterLogger(logger Logger) LimiterOption {
	return func(rl *RateLimiter) {
		if logger != nil {
			rl.logger = logger
		}
	}
}

// Kind reports the strategy this limiter was built from, used by Manager
// to route it into the identity or request-shape group.
func (rl *RateLimiter) Kind() Kind {
	return rl.strategy.Kind()
}

// check runs the strategy probe and, if it produced a candidate, performs
// the store round-trip that turns it into a verdict. It returns ok=false
// when the limiter has nothing to say about this request: either the
// strategy skipped, or the store's connection pool is exhausted. Both are
// fail-open for this limiter alone — other limiters still vote.
func (rl *RateLimiter) check(ctx context.Context, req *SafeRequest, peerIP string) (LimitVerdict, bool) {
	identity, bucket, ok := rl.strategy.Probe(req, peerIP, rl.global, rl.perValue)
	if !ok {
		return LimitVerdict{}, false
	}

	key := counterKey(rl.strategy.Kind(), identity)

	if err := rl.store.InitIfAbsent(ctx, key, int64(bucket.Capacity), bucket.Window); err != nil {
		rl.logger.Debugf("ratelimit: init_if_absent failed for %s: %v (ignored, decrement is authoritative)", key, err)
		metrics.ObserveStoreError("init_if_absent")
	}

	remaining, err := rl.store.Decrement(ctx, key)
	if err != nil {
		rl.logger.Errorf("ratelimit: counter store pool exhausted for %s, skipping limiter: %v", key, err)
		metrics.ObserveStoreError("decrement")
		return LimitVerdict{}, false
	}

	return LimitVerdict{
		Kind:      rl.strategy.Kind(),
		Total:     bucket.Capacity,
		Remaining: int32(remaining),
		Exceeded:  remaining < 0,
	}, true
}
