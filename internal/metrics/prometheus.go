// Package metrics exposes Prometheus collectors for deployments, verification
// and harness runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultDeployed = "deployed"
	ResultReused   = "reused"
	ResultFailed   = "failed"
	ResultVerified = "verified"
	ResultAlready  = "already_verified"
	ResultPassed   = "passed"
	ResultSkipped  = "skipped"
)

// PrometheusMetrics holds all Prometheus metrics for fundme.
// A nil *PrometheusMetrics records nothing.
type PrometheusMetrics struct {
	DeploymentsTotal   *prometheus.CounterVec
	VerificationsTotal *prometheus.CounterVec
	HarnessChecksTotal *prometheus.CounterVec

	ConfirmationWait *prometheus.HistogramVec
	GasUsed          *prometheus.HistogramVec
}

// NewPrometheusMetrics creates and registers all Prometheus metrics.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	return &PrometheusMetrics{
		DeploymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundme_deployments_total",
				Help: "Contract deployments by network, contract and result",
			},
			[]string{"network", "contract", "result"},
		),

		VerificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundme_verifications_total",
				Help: "Block explorer verifications by network and result",
			},
			[]string{"network", "result"},
		),

		HarnessChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fundme_harness_checks_total",
				Help: "Harness checks by suite and result",
			},
			[]string{"suite", "result"},
		),

		ConfirmationWait: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fundme_confirmation_wait_seconds",
				Help:    "Time spent waiting for block confirmations",
				Buckets: []float64{0.01, 0.1, 1, 5, 15, 30, 60, 120, 300},
			},
			[]string{"network"},
		),

		GasUsed: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fundme_gas_used",
				Help:    "Gas used per transaction by contract and method",
				Buckets: []float64{21000, 50000, 100000, 250000, 500000, 1000000, 2500000},
			},
			[]string{"contract", "method"},
		),
	}
}

// knownMethods bounds the method label to prevent cardinality explosion.
var knownMethods = map[string]bool{
	"deployment":      true,
	"fund":            true,
	"receive":         true,
	"withdraw":        true,
	"cheaperWithdraw": true,
	"updateAnswer":    true,
	"transfer":        true,
}

// RecordDeployment counts a deployment outcome.
func (m *PrometheusMetrics) RecordDeployment(network, contract, result string) {
	if m == nil {
		return
	}
	m.DeploymentsTotal.WithLabelValues(network, contract, result).Inc()
}

// RecordVerification counts a verification outcome.
func (m *PrometheusMetrics) RecordVerification(network, result string) {
	if m == nil {
		return
	}
	m.VerificationsTotal.WithLabelValues(network, result).Inc()
}

// RecordCheck counts a harness check outcome.
func (m *PrometheusMetrics) RecordCheck(suite string, passed, skipped bool) {
	if m == nil {
		return
	}
	result := ResultFailed
	switch {
	case skipped:
		result = ResultSkipped
	case passed:
		result = ResultPassed
	}
	m.HarnessChecksTotal.WithLabelValues(suite, result).Inc()
}

// ObserveConfirmationWait records how long a confirmation wait took.
func (m *PrometheusMetrics) ObserveConfirmationWait(network string, d time.Duration) {
	if m == nil {
		return
	}
	m.ConfirmationWait.WithLabelValues(network).Observe(d.Seconds())
}

// ObserveGas records the gas used by one transaction.
func (m *PrometheusMetrics) ObserveGas(contract, method string, gasUsed uint64) {
	if m == nil {
		return
	}
	if !knownMethods[method] {
		method = "other"
	}
	m.GasUsed.WithLabelValues(contract, method).Observe(float64(gasUsed))
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
