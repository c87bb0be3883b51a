// Package config loads and validates the gateway's YAML configuration:
// the api_gateway (target/listen) and rate_limiter (redis address,
// whitelist, limiter list) blocks. The schema mirrors the one distilled
// source's Settings/RateLimiterSettings/LimiterSettings structs used,
// restated here with YAML tags instead of Rust's serde attributes.
package config

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings is the top-level decoded configuration document.
type Settings struct {
	APIGateway  APIGatewaySettings  `yaml:"api_gateway"`
	RateLimiter RateLimiterSettings `yaml:"rate_limiter"`
}

// APIGatewaySettings configures the reverse-proxy forwarder and listener.
type APIGatewaySettings struct {
	TargetURL       string `yaml:"target_url"`
	ProxyServerAddr string `yaml:"proxy_server_addr"`
}

// RateLimiterSettings configures the counter store, whitelist and the
// ordered list of limiter blocks the Manager is built from.
type RateLimiterSettings struct {
	RedisAddr   string            `yaml:"redis_addr"`
	IPWhitelist []string          `yaml:"ip_whitelist"`
	Limiters    []LimiterSettings `yaml:"limiter"`
}

// LimiterSettings configures one RateLimiter: its strategy and at least
// one of a global bucket or a set of per-value bucket overrides.
type LimiterSettings struct {
	Strategy        string           `yaml:"strategy"`
	GlobalBucket    *BucketSettings  `yaml:"global_bucket"`
	BucketsPerValue []BucketPerValue `yaml:"buckets_per_value"`
}

// BucketPerValue is one entry of a buckets_per_value override list, keyed
// by the raw identity value (an IP string, a URL path, or a header name
// depending on the enclosing limiter's strategy).
type BucketPerValue struct {
	Value          string `yaml:"value"`
	TokensCount    uint32 `yaml:"tokens_count"`
	AddTokensEvery uint32 `yaml:"add_tokens_every"`
}

// BucketSettings is the wire shape of a single bucket: a token count and
// the window (in seconds) over which it refills.
type BucketSettings struct {
	TokensCount    uint32 `yaml:"tokens_count"`
	AddTokensEvery uint32 `yaml:"add_tokens_every"`
}

// ValidationError reports a configuration document that parsed but failed
// a semantic check. Settings loading is fatal on this error: the gateway
// refuses to start rather than run with an ambiguous limiter.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rate_limiter.limiter[%d]: %s", e.Index, e.Reason)
}

// Load reads and decodes the YAML document at path, then validates it.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate enforces the checks the schema can't express on its own: every
// limiter block must carry at least one bucket source and name a known
// strategy ("ip", "url" or "header").
func (s *Settings) Validate() error {
	for i, l := range s.RateLimiter.Limiters {
		if l.GlobalBucket == nil && len(l.BucketsPerValue) == 0 {
			return &ValidationError{Index: i, Reason: "must set global_bucket or buckets_per_value"}
		}
		switch l.Strategy {
		case "ip", "url", "header":
		default:
			return &ValidationError{Index: i, Reason: fmt.Sprintf("unknown strategy %q", l.Strategy)}
		}
	}
	return nil
}

// WhitelistIPs parses the configured whitelist strings into net.IP,
// skipping (and the caller should log) any entry that fails to parse.
func (s *Settings) WhitelistIPs() ([]net.IP, []string) {
	ips := make([]net.IP, 0, len(s.RateLimiter.IPWhitelist))
	var invalid []string
	for _, raw := range s.RateLimiter.IPWhitelist {
		ip := net.ParseIP(raw)
		if ip == nil {
			invalid = append(invalid, raw)
			continue
		}
		ips = append(ips, ip)
	}
	return ips, invalid
}
