// Marquee - Movie Discovery Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func getCounterValue(counter prometheus.Counter) float64 {
	var m io_prometheus_client.Metric
	if err := counter.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/favorites", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/favorites", "200", 15*time.Millisecond)

	if after := testutil.ToFloat64(counter); after != before+1 {
		t.Errorf("api_requests_total = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc = %v, want %v", got, before+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec = %v, want %v", got, before)
	}
}

func TestRecordUpstreamRequest(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		label      string
	}{
		{"ok response", 200, "200"},
		{"upstream 404 forwarded", 404, "404"},
		{"transport failure", 0, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := UpstreamRequestsTotal.WithLabelValues("/movie", tt.label)
			before := getCounterValue(counter)

			RecordUpstreamRequest("/movie", tt.statusCode, time.Second)

			if after := getCounterValue(counter); after != before+1 {
				t.Errorf("tmdb_requests_total{status_code=%q} = %v, want %v", tt.label, after, before+1)
			}
		})
	}
}

func TestRecordStoreOperation(t *testing.T) {
	conflicts := StoreOperationErrors.WithLabelValues("add", "conflict")
	before := getCounterValue(conflicts)

	RecordStoreOperation("add", "", time.Millisecond)
	if got := getCounterValue(conflicts); got != before {
		t.Errorf("success should not count an error: got %v, want %v", got, before)
	}

	RecordStoreOperation("add", "conflict", time.Millisecond)
	if got := getCounterValue(conflicts); got != before+1 {
		t.Errorf("conflict errors = %v, want %v", got, before+1)
	}
}

func TestRecordRecommendation(t *testing.T) {
	before := getCounterValue(RecommendBranchFailures)

	RecordRecommendation(12, 2, 300*time.Millisecond)

	if got := getCounterValue(RecommendBranchFailures); got != before+2 {
		t.Errorf("recommend_branch_failures_total = %v, want %v", got, before+2)
	}
}
