// Package metrics provides Prometheus instrumentation for the monitoring
// toolkit's own operations.
//
// Metrics exposed:
//   - smmonitor_invocations_total: Counter of endpoint invocations by outcome
//   - smmonitor_invoke_seconds: Histogram of endpoint invocation latency
//   - smmonitor_defects_total: Counter of injected defects by kind
//   - smmonitor_capture_files_read_total: Counter of capture files decoded
//   - smmonitor_capture_records_read_total: Counter of capture records decoded
//   - smmonitor_violations: Gauge of constraint violations in the latest check
//   - smmonitor_errors_total: Counter of errors by component
//
// All metrics carry the endpoint name as a label so several endpoints can
// share one process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for the invocation counter.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds all Prometheus metrics for the toolkit.
type Metrics struct {
	InvocationsTotal   *prometheus.CounterVec
	InvokeSeconds      *prometheus.HistogramVec
	DefectsTotal       *prometheus.CounterVec
	CaptureFilesRead   *prometheus.CounterVec
	CaptureRecordsRead *prometheus.CounterVec
	Violations         *prometheus.GaugeVec
	ErrorsTotal        *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		InvocationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smmonitor_invocations_total",
			Help: "Endpoint invocations, partitioned by outcome",
		}, []string{"endpoint", "outcome"}),

		InvokeSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smmonitor_invoke_seconds",
			Help:    "Endpoint invocation latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		DefectsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smmonitor_defects_total",
			Help: "Defects injected into traffic payloads, partitioned by kind",
		}, []string{"endpoint", "kind"}),

		CaptureFilesRead: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smmonitor_capture_files_read_total",
			Help: "Capture files decoded",
		}, []string{"endpoint"}),

		CaptureRecordsRead: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smmonitor_capture_records_read_total",
			Help: "Capture records decoded",
		}, []string{"endpoint"}),

		Violations: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smmonitor_violations",
			Help: "Constraint violations found by the latest check",
		}, []string{"endpoint"}),

		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "smmonitor_errors_total",
			Help: "Errors encountered, partitioned by component",
		}, []string{"endpoint", "component"}),
	}
}

// NewDefault creates metrics on the default Prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
