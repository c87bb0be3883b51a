// Package gin provides a Gin middleware adapter for the gateway's
// rate-limit decision pipeline, for deployments that embed the gateway
// inside a larger Gin application instead of running cmd/gateway as the
// standalone reverse proxy.
//
// Example usage:
//
//	router := gin.Default()
//	router.Use(ratelimitgin.RateLimiter(manager))
//	router.Any("/*path", myHandler)
package gin

import (
	"net/http"

	ratelimit "github.com/ratelimitgw/gateway"
	"github.com/gin-gonic/gin"
)

// RateLimiter returns a gin.HandlerFunc that runs the gateway's decision
// flow ahead of c.Next(). A rejection or hard failure writes directly to
// c.Writer and aborts the chain; c.Next() only runs on the admitted path,
// with c.Request swapped for the rebuilt SafeRequest so downstream
// handlers see the exact method/headers/body the limiters evaluated.
func RateLimiter(manager *ratelimit.Manager, opts ...ratelimit.MiddlewareOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		admitted := false

		forward := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			admitted = true
			c.Request = r
		})

		// A fresh Middleware per request is cheap (a handful of field
		// copies) and keeps the forwarder closure — which captures this
		// specific gin.Context — from being shared across concurrent
		// requests the way a single long-lived Middleware's forwarder
		// field would be.
		mw := ratelimit.NewMiddleware(manager, forward, opts...)
		mw.ServeHTTP(c.Writer, c.Request)

		if admitted {
			c.Next()
		} else {
			c.Abort()
		}
	}
}
