// Governing: SPEC-0008 REQ "Prometheus Metrics Endpoint", ADR-0014
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthzChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkdeck_authz_checks_total",
		Help: "Authorization guard evaluations by outcome.",
	}, []string{"outcome"})

	AuthzDenialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkdeck_authz_denials_total",
		Help: "Guard denials by error code.",
	}, []string{"code"})

	RedirectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linkdeck_redirects_total",
		Help: "Total slug resolution attempts.",
	}, []string{"status"})

	RedirectDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "linkdeck_redirect_duration_seconds",
		Help:    "Time from request receipt to redirect response.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	})
)
