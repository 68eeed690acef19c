// Package metrics holds the Prometheus instruments for the compliance
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles every instrument so the composition root registers
// them exactly once and hands the bundle to whoever increments.
type Metrics struct {
	ChecksTotal        *prometheus.CounterVec
	ViolationsTotal    *prometheus.CounterVec
	AuditWriteFailures prometheus.Counter
	CheckDuration      prometheus.Histogram
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers on a caller-supplied registry; tests pass a fresh
// one to avoid duplicate-registration panics.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "compliance_checks_total",
			Help: "Compliance checks run, labeled by overall result.",
		}, []string{"result"}),
		ViolationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "compliance_violations_total",
			Help: "Rule violations surfaced, labeled by rule category.",
		}, []string{"category"}),
		AuditWriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "compliance_audit_write_failures_total",
			Help: "Audit sink writes that failed after a completed check.",
		}),
		CheckDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "compliance_check_duration_seconds",
			Help:    "Wall time of a full compliance check including context build.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
