// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"reviewdesk/internal/models"
)

// Scoring pass outcomes.
const (
	ResultOK        = "ok"
	ResultFailed    = "failed"
	ResultDiscarded = "discarded"
	ResultCancelled = "cancelled"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
//
// Metrics:
//   - reviewdesk_scoring_passes_total{result}
//   - reviewdesk_scoring_duration_seconds
//   - reviewdesk_transitions_total{from,to}
//   - reviewdesk_http_requests_total{method,status}
type Metrics struct {
	ScoringPasses   *prometheus.CounterVec
	ScoringDuration prometheus.Histogram
	Transitions     *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
}

// New registers the collectors on reg. Use prometheus.DefaultRegisterer
// in main and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ScoringPasses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewdesk_scoring_passes_total",
			Help: "Scoring passes by outcome",
		}, []string{"result"}),
		ScoringDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "reviewdesk_scoring_duration_seconds",
			Help:    "Duration of scoring passes in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewdesk_transitions_total",
			Help: "Page status transitions",
		}, []string{"from", "to"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewdesk_http_requests_total",
			Help: "HTTP requests by method and status code class",
		}, []string{"method", "status"}),
	}
}

// ObservePass records one finished scoring pass.
func (m *Metrics) ObservePass(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.ScoringPasses.WithLabelValues(result).Inc()
	if result == ResultOK {
		m.ScoringDuration.Observe(d.Seconds())
	}
}

// ObserveTransition records a status change.
func (m *Metrics) ObserveTransition(from, to models.PageStatus) {
	if m == nil || from == to {
		return
	}
	m.Transitions.WithLabelValues(string(from), string(to)).Inc()
}

// ObserveRequest records a served HTTP request.
func (m *Metrics) ObserveRequest(method string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, statusClass(status)).Inc()
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
