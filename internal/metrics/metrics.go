// Package metrics exposes Prometheus instrumentation for the gateway's
// rate-limit decision pipeline: how many requests were admitted, rejected,
// or passed through as whitelisted, broken down by the strategy kind that
// produced the tightest verdict, plus counter store errors and end-to-end
// proxy latency.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Decisions counts limiter evaluations by outcome and strategy kind.
	// outcome is one of "admitted", "rejected", "whitelisted"; kind is the
	// Strategy.Kind() of the limiter that produced the tightest verdict,
	// or "none" when no limiter ran (whitelisted peer, no limiters
	// configured).
	Decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_rate_limit_decisions_total",
			Help: "Total number of rate-limit decisions by outcome and strategy kind.",
		},
		[]string{"outcome", "kind"},
	)

	// StoreErrors counts CounterStore failures, labeled by the store
	// operation that failed. A "decrement" failure skips the limiter
	// (fail-open); an "init_if_absent" failure is ignored and the check
	// goes on to the decrement.
	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_counter_store_errors_total",
			Help: "Total number of counter store errors by operation.",
		},
		[]string{"op"},
	)

	// RequestDuration records proxied request latency in seconds, labeled
	// by the final HTTP status code written to the client.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Duration of proxied requests in seconds, from admission decision to response.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(Decisions, StoreErrors, RequestDuration)
}

// ObserveDecision records the outcome of a single rate-limit decision.
func ObserveDecision(outcome, kind string) {
	if kind == "" {
		kind = "none"
	}
	Decisions.WithLabelValues(outcome, kind).Inc()
}

// ObserveStoreError records a CounterStore failure for the given op
// ("init_if_absent" or "decrement").
func ObserveStoreError(op string) {
	StoreErrors.WithLabelValues(op).Inc()
}

// Timer returns a func that, when called, observes elapsed time against
// RequestDuration under the given status code.
func Timer() func(status int) {
	start := time.Now()
	return func(status int) {
		RequestDuration.WithLabelValues(strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	}
}
