// Package proxy implements the gateway's Forwarder capability: a thin
// wrapper over net/http/httputil.ReverseProxy that forwards an admitted
// request to a single upstream origin and stamps the rate-limit quota
// headers the ratelimit.Middleware attached to the request's context onto
// the response before it reaches the client.
package proxy

import (
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/ratelimitgw/gateway"
)

// New builds a ratelimit.Forwarder that proxies every request to target.
// Forward failures (dial errors, upstream timeouts, broken pipes) are
// reported as 500 "Internal server error", matching the gateway's error
// contract: the request already consumed its rate-limit slot by the time
// forwarding is attempted, which is accepted as the cost of not globally
// wedging on a flaky upstream.
func New(target *url.URL) ratelimit.Forwarder {
	rp := httputil.NewSingleHostReverseProxy(target)

	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("proxy: forward to %s failed: %v", target, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}

	rp.ModifyResponse = func(resp *http.Response) error {
		if v, ok := ratelimit.VerdictFromContext(resp.Request.Context()); ok {
			ratelimit.StampHeaders(resp.Header, v)
		}
		return nil
	}

	return rp
}
