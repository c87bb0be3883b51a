package ratelimit

import (
	"context"
	"net"
	"sync"
)

// Manager holds the IP whitelist and the two ordered limiter groups built
// from configuration. It is immutable after construction: the only way to
// pick up new settings is to build a new Manager and swap it in, which is
// what cmd/gateway does for each Settings internal/config.Watch delivers.
type Manager struct {
	whitelist        map[string]struct{}
	identityLimiters []*RateLimiter
	requestLimiters  []*RateLimiter
}

// NewManager groups a slice of already-built limiters by strategy kind —
// IP and Header strategies check identity and run first, URL strategies
// check request shape and run second — and copies the whitelist verbatim.
// Group order within each slice is preserved exactly as passed in, which
// callers should derive from configuration order.
func NewManager(whitelist []net.IP, limiters []*RateLimiter) *Manager {
	m := &Manager{
		whitelist: make(map[string]struct{}, len(whitelist)),
	}
	for _, ip := range whitelist {
		m.whitelist[ip.String()] = struct{}{}
	}

	for _, rl := range limiters {
		switch rl.Kind() {
		case KindIP, KindHeader:
			m.identityLimiters = append(m.identityLimiters, rl)
		case KindURL:
			m.requestLimiters = append(m.requestLimiters, rl)
		}
	}
	return m
}

// IsWhitelisted reports whether peerIP bypasses rate limiting entirely.
func (m *Manager) IsWhitelisted(peerIP string) bool {
	_, ok := m.whitelist[peerIP]
	return ok
}

// Evaluate runs the two-group short-circuit decision of the gateway: every
// identity limiter votes before any request-shape limiter is consulted, so
// a flood from one abusive caller can never erode another caller's URL
// quota. Within a group, limiters are fanned out concurrently and joined
// before the group's exceeded check — suspending on one limiter's store
// round-trip never blocks another's.
//
// It returns the tightest verdict seen across every limiter that produced
// one (nil if none did) and whether the request should be rejected. Once a
// group's aggregate is exceeded, the remaining group is never evaluated —
// no counter in it is touched.
func (m *Manager) Evaluate(ctx context.Context, req *SafeRequest, peerIP string) (*LimitVerdict, bool) {
	var tightest *LimitVerdict

	for _, group := range [][]*RateLimiter{m.identityLimiters, m.requestLimiters} {
		verdicts := evaluateGroup(ctx, group, req, peerIP)

		exceeded := false
		for _, v := range verdicts {
			tightest = tighten(tightest, v)
			if v.Exceeded {
				exceeded = true
			}
		}
		if exceeded {
			return tightest, true
		}
	}

	return tightest, false
}

// evaluateGroup runs every limiter in a group concurrently and collects
// the verdicts of those that didn't skip.
func evaluateGroup(ctx context.Context, group []*RateLimiter, req *SafeRequest, peerIP string) []LimitVerdict {
	if len(group) == 0 {
		return nil
	}

	verdicts := make([]LimitVerdict, len(group))
	ok := make([]bool, len(group))

	var wg sync.WaitGroup
	wg.Add(len(group))
	for i, rl := range group {
		go func(i int, rl *RateLimiter) {
			defer wg.Done()
			v, didCheck := rl.check(ctx, req, peerIP)
			verdicts[i] = v
			ok[i] = didCheck
		}(i, rl)
	}
	wg.Wait()

	out := verdicts[:0]
	for i, didCheck := range ok {
		if didCheck {
			out = append(out, verdicts[i])
		}
	}
	return out
}
