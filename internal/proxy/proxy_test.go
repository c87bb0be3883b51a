package proxy

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ratelimit "github.com/ratelimitgw/gateway"
)

// memoryStoreStub is a minimal ratelimit.CounterStore for exercising the
// proxy's ModifyResponse hook without depending on store's cleanup
// goroutine machinery, which this test has no use for.
type memoryStoreStub struct {
	mu     sync.Mutex
	values map[string]int64
}

func (s *memoryStoreStub) InitIfAbsent(_ context.Context, key string, value int64, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]int64)
	}
	if _, ok := s.values[key]; !ok {
		s.values[key] = value
	}
	return nil
}

func (s *memoryStoreStub) Decrement(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key]--
	return s.values[key], nil
}

func TestProxyForwardsToTarget(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/widgets", r.URL.Path)
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("ok"))
	}))
	defer upstream.Close()

	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)

	fwd := New(target)

	r := httptest.NewRequest("GET", "/v1/widgets", nil)
	w := httptest.NewRecorder()
	fwd.ServeHTTP(w, r)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

// TestProxyStampsHeadersFromContextVerdict exercises the ModifyResponse
// hook through the same path production traffic takes: a Middleware
// attaches the tightest verdict to the outbound request's context, and
// the proxy's ModifyResponse reads it back via VerdictFromContext to
// stamp the response before it reaches the client.
func TestProxyStampsHeadersFromContextVerdict(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)
	fwd := New(target)

	global := ratelimit.NewBucket(10, 60)
	rl, err := ratelimit.NewRateLimiter(ratelimit.IPStrategy{}, &global, nil, &memoryStoreStub{})
	require.NoError(t, err)
	manager := ratelimit.NewManager(nil, []*ratelimit.RateLimiter{rl})
	mw := ratelimit.NewMiddleware(manager, fwd)

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = net.JoinHostPort("5.5.5.5", "1234")
	w := httptest.NewRecorder()

	mw.ServeHTTP(w, r)

	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
}

func TestProxyReturns500OnUnreachableTarget(t *testing.T) {
	target, err := url.Parse("http://127.0.0.1:1")
	require.NoError(t, err)
	fwd := New(target)

	r := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	fwd.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
