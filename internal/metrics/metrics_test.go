// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"reviewdesk/internal/models"
)

func TestObservePass(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObservePass(ResultOK, 200*time.Millisecond)
	m.ObservePass(ResultDiscarded, 0)
	m.ObservePass(ResultOK, time.Second)

	if got := testutil.ToFloat64(m.ScoringPasses.WithLabelValues(ResultOK)); got != 2 {
		t.Errorf("ok passes: got %v", got)
	}
	if got := testutil.ToFloat64(m.ScoringPasses.WithLabelValues(ResultDiscarded)); got != 1 {
		t.Errorf("discarded passes: got %v", got)
	}
	if got := testutil.CollectAndCount(m.ScoringDuration); got != 1 {
		t.Errorf("duration series: got %d", got)
	}
}

func TestObserveTransition(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveTransition(models.PageStatusProcessing, models.PageStatusPendingReview)
	m.ObserveTransition(models.PageStatusProcessing, models.PageStatusProcessing)

	if got := testutil.ToFloat64(m.Transitions.WithLabelValues("processing", "pending_review")); got != 1 {
		t.Errorf("transitions: got %v", got)
	}
	if got := testutil.CollectAndCount(m.Transitions); got != 1 {
		t.Errorf("self transitions should not be counted, series = %d", got)
	}
}

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())
	for _, code := range []int{200, 201, 404, 503} {
		m.ObserveRequest("GET", code)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "2xx")); got != 2 {
		t.Errorf("2xx: got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "5xx")); got != 1 {
		t.Errorf("5xx: got %v", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObservePass(ResultOK, time.Second)
	m.ObserveTransition(models.PageStatusDraft, models.PageStatusAwaitingContent)
	m.ObserveRequest("GET", 200)
}
