// Package store provides CounterStore backends for github.com/ratelimitgw/gateway.
//
// Two backends are provided:
//   - RedisCounterStore: Redis-backed, for multi-instance deployments
//   - MemoryCounterStore: in-process, for single-instance or test use
//
// Both implement the same two-operation contract the decision core
// consumes (ratelimit.CounterStore): a first-write TTL seed and an atomic
// decrement.
package store

import (
	"context"
	"errors"
	"net"
	"time"

	ratelimit "github.com/ratelimitgw/gateway"
	"github.com/redis/go-redis/v9"
)

// assert RedisCounterStore satisfies the core contract at compile time.
var _ ratelimit.CounterStore = (*RedisCounterStore)(nil)

// ErrPoolExhausted is returned by Decrement when the Redis client could not
// reach the server at all: the connection pool is exhausted, the client is
// closed, the dial or round-trip failed with a network error, or the
// context deadline passed (see isConnectionFailure). RateLimiter treats this as "skip",
// per the gateway's fail-open-on-pool-exhaustion policy.
var ErrPoolExhausted = errors.New("store: redis connection pool exhausted")

// RedisCounterStore implements ratelimit.CounterStore against a Redis (or
// Redis-compatible) server using the exact two commands the decision core
// needs: SET key val EX ttl NX, then DECR key.
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedis builds a RedisCounterStore over an already-configured client.
func NewRedis(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// InitIfAbsent seeds key to value with the given TTL only if key does not
// already exist. Errors are swallowed: the subsequent Decrement is
// authoritative, so a failed seed just means an existing (or absent) value
// gets decremented instead.
func (s *RedisCounterStore) InitIfAbsent(ctx context.Context, key string, value int64, ttl time.Duration) error {
	s.client.SetNX(ctx, key, value, ttl)
	return nil
}

// Decrement atomically decrements key and returns the post-decrement
// value. A command-level failure is absorbed into -1 with a nil error,
// matching the gateway's fail-closed-per-check contract. Only a failure to
// obtain a usable connection at all is surfaced as an error, which signals
// the caller to skip this limiter instead.
func (s *RedisCounterStore) Decrement(ctx context.Context, key string) (int64, error) {
	count, err := s.client.Decr(ctx, key).Result()
	if err == nil {
		return count, nil
	}
	if isConnectionFailure(err) {
		return 0, ErrPoolExhausted
	}
	return -1, nil
}

// isConnectionFailure distinguishes "could not reach Redis at all" from
// "Redis answered but the command itself failed". Only the former should
// skip the limiter; the latter falls back to the fail-closed sentinel.
// redis.ErrPoolTimeout/ErrClosed cover the client's own pool bookkeeping;
// a net.Error or context deadline covers the dial/round-trip actually
// failing against an unreachable or overloaded server.
func isConnectionFailure(err error) bool {
	if errors.Is(err, redis.ErrPoolTimeout) || errors.Is(err, redis.ErrClosed) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
