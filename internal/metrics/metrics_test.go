// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// gatherMetric returns the metric family with the given name from the
// default registry, or nil when absent.
func gatherMetric(t *testing.T, name string) *dto.MetricFamily {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestObserveAPIRequest(t *testing.T) {
	ObserveAPIRequest("GET", "/api/v1/recommendations/user/{userID}", 200, 25*time.Millisecond)

	mf := gatherMetric(t, "wayfare_api_requests_total")
	if mf == nil {
		t.Fatal("wayfare_api_requests_total not registered")
	}

	found := false
	for _, m := range mf.GetMetric() {
		labels := map[string]string{}
		for _, lp := range m.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		if labels["method"] == "GET" && labels["status"] == "200" {
			found = true
			if m.GetCounter().GetValue() < 1 {
				t.Errorf("expected counter >= 1, got %v", m.GetCounter().GetValue())
			}
		}
	}
	if !found {
		t.Error("expected labeled sample for GET/200")
	}
}

func TestObserveDBQueryError(t *testing.T) {
	ObserveDBQuery("list_interactions", 5*time.Millisecond, errors.New("boom"))

	mf := gatherMetric(t, "wayfare_db_query_errors_total")
	if mf == nil {
		t.Fatal("wayfare_db_query_errors_total not registered")
	}
	if len(mf.GetMetric()) == 0 {
		t.Fatal("expected at least one error sample")
	}
}

func TestRecommendationsServedLabels(t *testing.T) {
	RecommendationsServed.WithLabelValues("hybrid").Add(3)

	mf := gatherMetric(t, "wayfare_recommendations_served_total")
	if mf == nil {
		t.Fatal("wayfare_recommendations_served_total not registered")
	}

	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "method" && lp.GetValue() == "hybrid" {
				if m.GetCounter().GetValue() < 3 {
					t.Errorf("expected >= 3, got %v", m.GetCounter().GetValue())
				}
				return
			}
		}
	}
	t.Error("expected hybrid-labeled sample")
}
