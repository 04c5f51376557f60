package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPricingMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPricingMetrics(reg)
	action := "special_offer_applied"
	metrics.ObserveMutation(action, OutcomeSuccess, 42, 250*time.Millisecond)
	metrics.ObserveMutation(action, OutcomeSuccess, 0, 10*time.Millisecond)
	metrics.IncAuditFailure(action)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "pricing_variants_affected_total", "action", action); err != nil {
		t.Fatalf("fetch affected: %v", err)
	} else if got != 42 {
		t.Fatalf("expected affected=42, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "pricing_bulk_mutations_total", "outcome", OutcomeSuccess); err != nil {
		t.Fatalf("fetch mutations: %v", err)
	} else if got != 2 {
		t.Fatalf("expected mutations=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "pricing_audit_write_failures_total", "action", action); err != nil {
		t.Fatalf("fetch audit failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected audit failures=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "pricing_bulk_mutation_duration_seconds", "action", action); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0.25 {
		t.Fatalf("expected duration sum > 0.25, got %f", got)
	}
}

func TestPricingMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewPricingMetrics(nil)
	metrics.ObserveMutation("", OutcomeFailure, 3, time.Second)
	metrics.IncAuditFailure("")

	var nilMetrics *PricingMetrics
	nilMetrics.ObserveMutation("x", OutcomeSuccess, 1, time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
