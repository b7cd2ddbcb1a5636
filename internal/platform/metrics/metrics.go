// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics owns the Prometheus collectors of the Memberdesk server.

Collectors are registered on the default registry at package init and
exposed by [Handler] on /metrics.

Families:

  - HTTP: in-flight gauge, request counter and latency histogram by route pattern.
  - Identity: credential outcomes (login, register, token, refresh, logout),
    identity resolutions by source and access guard decisions.
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values shared by the identity collectors.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// # HTTP

var (
	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "memberdesk_http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memberdesk_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "memberdesk_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// # Identity

var (
	// AuthAttempts counts credential operations.
	// Labels:
	//   - operation: "login", "register", "token", "refresh", "logout"
	//   - outcome: "success", "failure", "error"
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memberdesk_auth_attempts_total",
			Help: "Total number of credential operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	// IdentityResolutions counts how request identities were established.
	// Labels:
	//   - source: "session", "bearer"
	//   - outcome: "resolved", "invalid", "revoked", "error"
	IdentityResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memberdesk_identity_resolutions_total",
			Help: "Identity resolution attempts by credential source.",
		},
		[]string{"source", "outcome"},
	)

	// AccessDecisions counts access guard verdicts.
	// Labels:
	//   - surface: "api", "ui"
	//   - decision: "allow", "unauthenticated", "forbidden", "error"
	AccessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memberdesk_access_decisions_total",
			Help: "Access guard decisions by surface.",
		},
		[]string{"surface", "decision"},
	)
)

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Instrument records in-flight count, totals and latency for every request.
// The route label is the chi pattern, so ids in paths do not explode cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		start := time.Now()
		recorder := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := "unmatched"
		if routeContext := chi.RouteContext(r.Context()); routeContext != nil {
			if pattern := routeContext.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(recorder.code)).Inc()
	})
}
