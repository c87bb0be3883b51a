package ratelimit

import "strings"

// Kind tags which identity dimension a Strategy derives its key from. It
// is part of every CounterKey, which is what keeps the IP, URL and Header
// strategies' keyspaces disjoint even when their raw identity values
// happen to collide as strings.
type Kind string

const (
	KindIP     Kind = "ip"
	KindURL    Kind = "url"
	KindHeader Kind = "header"
)

// Strategy derives a per-request identity value and selects the Bucket
// that applies to it. Probe does no I/O: it is pure given the request, the
// peer IP and the limiter's configured buckets. The store round-trip that
// turns a probe into a LimitVerdict is the one piece every strategy shares,
// implemented once in RateLimiter.check rather than duplicated per kind.
type Strategy interface {
	Kind() Kind
	Probe(req *SafeRequest, peerIP string, global *Bucket, perValue map[string]Bucket) (identity string, bucket Bucket, ok bool)
}

// selectBucket implements the shared bucket-selection rule: an exact
// per-value override wins, the global bucket is the fallback, and no match
// at all means the caller should skip the request rather than guess.
func selectBucket(value string, global *Bucket, perValue map[string]Bucket) (Bucket, bool) {
	if perValue != nil {
		if b, ok := perValue[value]; ok {
			return b, true
		}
	}
	if global != nil {
		return *global, true
	}
	return Bucket{}, false
}

// IPStrategy identifies the caller by the textual form of its peer
// address. It never skips once a bucket is available: every request has a
// peer IP.
type IPStrategy struct{}

func (IPStrategy) Kind() Kind { return KindIP }

func (IPStrategy) Probe(_ *SafeRequest, peerIP string, global *Bucket, perValue map[string]Bucket) (string, Bucket, bool) {
	bucket, ok := selectBucket(peerIP, global, perValue)
	return peerIP, bucket, ok
}

// URLStrategy identifies the caller by the request path, excluding the
// query string. Override lookups key on the full path.
type URLStrategy struct{}

func (URLStrategy) Kind() Kind { return KindURL }

func (URLStrategy) Probe(req *SafeRequest, _ string, global *Bucket, perValue map[string]Bucket) (string, Bucket, bool) {
	path := req.URL.Path
	bucket, ok := selectBucket(path, global, perValue)
	return path, bucket, ok
}

// HeaderStrategy identifies the caller by whichever configured header
// name is present on the request. The configured names are walked in map
// iteration order and the first one present wins; when several configured
// headers are present, which of them is used is not defined. If none
// match and a global bucket exists, it falls back
// to the raw Authorization header so unconfigured callers still land
// under a catch-all quota. If neither path yields a value, the limiter
// skips: there is nothing to key a counter on.
type HeaderStrategy struct{}

func (HeaderStrategy) Kind() Kind { return KindHeader }

func (HeaderStrategy) Probe(req *SafeRequest, _ string, global *Bucket, perValue map[string]Bucket) (string, Bucket, bool) {
	for name, bucket := range perValue {
		if v := req.Header.Get(name); v != "" {
			return v, bucket, true
		}
	}

	if global != nil {
		if v := req.Header.Get("Authorization"); v != "" {
			return v, *global, true
		}
	}

	return "", Bucket{}, false
}

// StrategyForName builds the Strategy implementation for a configured
// strategy name (case-insensitive "ip", "url" or "header"), for callers
// (cmd/gateway) turning a config.LimiterSettings.Strategy string into a
// RateLimiter. The bool return, not an error, matches the other
// strategies' pure-function shape; an unrecognized name is the caller's
// configuration mistake to report.
func StrategyForName(name string) (Strategy, bool) {
	switch strings.ToLower(name) {
	case string(KindIP):
		return IPStrategy{}, true
	case string(KindURL):
		return URLStrategy{}, true
	case string(KindHeader):
		return HeaderStrategy{}, true
	default:
		return nil, false
	}
}
