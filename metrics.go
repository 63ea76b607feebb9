// Prometheus metrics served on /metrics
package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

var metricsRegistry = prometheus.NewRegistry()

var (
	pollsTotal = promauto.With(metricsRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "repostalert_polls_total",
			Help: "Polls of the notifications, by tracking mode",
		},
		[]string{"mode"},
	)

	pollErrorsTotal = promauto.With(metricsRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "repostalert_poll_errors_total",
			Help: "Failed polls, by tracking mode",
		},
		[]string{"mode"},
	)

	repostsTotal = promauto.With(metricsRegistry).NewCounter(
		prometheus.CounterOpts{
			Name: "repostalert_reposts_total",
			Help: "New reposts detected",
		},
	)

	alertsShownTotal = promauto.With(metricsRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "repostalert_alerts_shown_total",
			Help: "Alerts shown on the overlay",
		},
		[]string{"kind"},
	)

	queueLengthGauge = promauto.With(metricsRegistry).NewGauge(
		prometheus.GaugeOpts{
			Name: "repostalert_queue_length",
			Help: "Alerts waiting to be shown",
		},
	)

	trackingGauge = promauto.With(metricsRegistry).NewGauge(
		prometheus.GaugeOpts{
			Name: "repostalert_tracking",
			Help: "1 while the tracker runs",
		},
	)

	trackModeGauge = promauto.With(metricsRegistry).NewGauge(
		prometheus.GaugeOpts{
			Name: "repostalert_track_mode",
			Help: "Tracking mode (0=fetch, 1=browser)",
		},
	)

	breakerStateGauge = promauto.With(metricsRegistry).NewGauge(
		prometheus.GaugeOpts{
			Name: "repostalert_feed_circuit_state",
			Help: "Feed circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// recordBreakerState exports the feed breaker state
func recordBreakerState(st gobreaker.State) {
	var v float64
	switch st {
	case gobreaker.StateClosed:
		v = 0
	case gobreaker.StateHalfOpen:
		v = 1
	case gobreaker.StateOpen:
		v = 2
	}
	breakerStateGauge.Set(v)
}

func metricsHandler() http.Handler {
	return promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{})
}
