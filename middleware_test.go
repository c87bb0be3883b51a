package ratelimit

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoForwarder stands in for internal/proxy's Forwarder: it stamps the
// quota headers from the context verdict exactly the way a
// ModifyResponse hook would, then echoes the request back as the body.
func echoForwarder() Forwarder {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if v, ok := VerdictFromContext(r.Context()); ok {
			StampHeaders(w.Header(), v)
		}
		w.Header().Set("X-Echo-Method", r.Method)
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	})
}

func TestMiddlewareAdmitsUnderQuota(t *testing.T) {
	global := NewBucket(5, 60)
	rl := mustLimiter(t, IPStrategy{}, &global, nil, newFakeStore())
	manager := NewManager(nil, []*RateLimiter{rl})
	mw := NewMiddleware(manager, echoForwarder())

	r := httptest.NewRequest("POST", "/submit", strings.NewReader("payload"))
	r.RemoteAddr = net.JoinHostPort("9.9.9.9", "1234")
	w := httptest.NewRecorder()

	mw.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "payload", w.Body.String())
	assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
}

func TestMiddlewareRejectsOverQuota(t *testing.T) {
	global := NewBucket(1, 60)
	rl := mustLimiter(t, IPStrategy{}, &global, nil, newFakeStore())
	manager := NewManager(nil, []*RateLimiter{rl})
	mw := NewMiddleware(manager, echoForwarder())

	req := func() *http.Request {
		r := httptest.NewRequest("GET", "/ping", nil)
		r.RemoteAddr = net.JoinHostPort("9.9.9.9", "1234")
		return r
	}

	w1 := httptest.NewRecorder()
	mw.ServeHTTP(w1, req())
	assert.Equal(t, http.StatusOK, w1.Code)

	w2 := httptest.NewRecorder()
	mw.ServeHTTP(w2, req())
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.Empty(t, w2.Header().Get("X-RateLimit-Remaining"), "a rejected request is not stamped")
}

func TestMiddlewareBypassesWhitelistedPeers(t *testing.T) {
	global := NewBucket(1, 60)
	store := newFakeStore()
	rl := mustLimiter(t, IPStrategy{}, &global, nil, store)
	manager := NewManager([]net.IP{net.ParseIP("9.9.9.9")}, []*RateLimiter{rl})
	mw := NewMiddleware(manager, echoForwarder())

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest("GET", "/ping", nil)
		r.RemoteAddr = net.JoinHostPort("9.9.9.9", "1234")
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Empty(t, store.values, "a whitelisted peer's traffic never touches the counter store")
}

func TestMiddlewareRejectsOversizedBody(t *testing.T) {
	global := NewBucket(5, 60)
	rl := mustLimiter(t, IPStrategy{}, &global, nil, newFakeStore())
	manager := NewManager(nil, []*RateLimiter{rl})
	mw := NewMiddleware(manager, echoForwarder(), WithMaxBodyBytes(4))

	r := httptest.NewRequest("POST", "/submit", strings.NewReader("this is too long"))
	r.RemoteAddr = net.JoinHostPort("9.9.9.9", "1234")
	w := httptest.NewRecorder()

	mw.ServeHTTP(w, r)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestMiddlewarePreservesRequestForForwarder(t *testing.T) {
	global := NewBucket(5, 60)
	rl := mustLimiter(t, IPStrategy{}, &global, nil, newFakeStore())
	manager := NewManager(nil, []*RateLimiter{rl})
	mw := NewMiddleware(manager, echoForwarder())

	r := httptest.NewRequest("PUT", "/x", strings.NewReader("body"))
	r.RemoteAddr = net.JoinHostPort("9.9.9.9", "1234")
	w := httptest.NewRecorder()

	mw.ServeHTTP(w, r)
	assert.Equal(t, "PUT", w.Header().Get("X-Echo-Method"))
}

func TestVerdictFromContext(t *testing.T) {
	global := NewBucket(5, 60)
	rl := mustLimiter(t, IPStrategy{}, &global, nil, newFakeStore())
	manager := NewManager(nil, []*RateLimiter{rl})

	var captured LimitVerdict
	var ok bool
	forwarder := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, ok = VerdictFromContext(r.Context())
	})
	mw := NewMiddleware(manager, forwarder)

	r := httptest.NewRequest("GET", "/x", nil)
	r.RemoteAddr = net.JoinHostPort("9.9.9.9", "1234")
	mw.ServeHTTP(httptest.NewRecorder(), r)

	require.True(t, ok)
	assert.Equal(t, KindIP, captured.Kind)
}

func TestPeerAddr(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "198.51.100.7:9999"
	assert.Equal(t, "198.51.100.7", peerAddr(r))

	r.RemoteAddr = "not-a-host-port"
	assert.Equal(t, "not-a-host-port", peerAddr(r))
}
