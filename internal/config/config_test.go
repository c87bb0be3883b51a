package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
api_gateway:
  target_url: http://localhost:9000
  proxy_server_addr: :8080
rate_limiter:
  redis_addr: localhost:6379
  ip_whitelist:
    - 10.0.0.1
    - not-an-ip
  limiter:
    - strategy: ip
      global_bucket:
        tokens_count: 100
        add_tokens_every: 60
    - strategy: header
      buckets_per_value:
        - value: X-Api-Key
          tokens_count: 1000
          add_tokens_every: 60
`

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeTempConfig(t, validYAML)
	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", s.APIGateway.TargetURL)
	assert.Equal(t, ":8080", s.APIGateway.ProxyServerAddr)
	assert.Equal(t, "localhost:6379", s.RateLimiter.RedisAddr)
	require.Len(t, s.RateLimiter.Limiters, 2)
	assert.Equal(t, "ip", s.RateLimiter.Limiters[0].Strategy)
	assert.Equal(t, uint32(100), s.RateLimiter.Limiters[0].GlobalBucket.TokensCount)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "not: [valid: yaml")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsLimiterWithoutBucketSource(t *testing.T) {
	s := &Settings{
		RateLimiter: RateLimiterSettings{
			Limiters: []LimiterSettings{{Strategy: "ip"}},
		},
	}
	err := s.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, verr.Index)
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	global := BucketSettings{TokensCount: 1, AddTokensEvery: 1}
	s := &Settings{
		RateLimiter: RateLimiterSettings{
			Limiters: []LimiterSettings{{Strategy: "bogus", GlobalBucket: &global}},
		},
	}
	assert.Error(t, s.Validate())
}

func TestWhitelistIPsSkipsInvalidEntries(t *testing.T) {
	s := &Settings{RateLimiter: RateLimiterSettings{IPWhitelist: []string{"10.0.0.1", "garbage", "::1"}}}
	ips, invalid := s.WhitelistIPs()
	assert.Len(t, ips, 2)
	assert.Equal(t, []string{"garbage"}, invalid)
}
