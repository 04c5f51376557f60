package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels a finished bulk mutation.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
)

// PricingMetrics records bulk mutation activity.
type PricingMetrics struct {
	duration      *prometheus.HistogramVec
	affected      *prometheus.CounterVec
	mutations     *prometheus.CounterVec
	auditFailures *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_bulk_mutation_duration_seconds",
		Help:    "Duration of bulk pricing mutations in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"action"})
	affected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_variants_affected_total",
		Help: "Variants rewritten by pricing mutations.",
	}, []string{"action"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_bulk_mutations_total",
		Help: "Pricing mutations by outcome.",
	}, []string{"action", "outcome"})
	auditFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_audit_write_failures_total",
		Help: "Committed mutations whose audit entry could not be written.",
	}, []string{"action"})
	reg.MustRegister(duration, affected, mutations, auditFailures)
	return &PricingMetrics{
		duration:      duration,
		affected:      affected,
		mutations:     mutations,
		auditFailures: auditFailures,
	}
}

// ObserveMutation records one finished mutation.
func (m *PricingMetrics) ObserveMutation(action, outcome string, affected int64, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	action = normalizeLabel(action)
	m.duration.WithLabelValues(action).Observe(duration.Seconds())
	m.mutations.WithLabelValues(action, normalizeLabel(outcome)).Inc()
	if affected > 0 {
		m.affected.WithLabelValues(action).Add(float64(affected))
	}
}

// IncAuditFailure counts a mutation that committed without an audit entry.
func (m *PricingMetrics) IncAuditFailure(action string) {
	if m == nil || m.auditFailures == nil {
		return
	}
	m.auditFailures.WithLabelValues(normalizeLabel(action)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
