package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StatementMetrics tracks payout statement calculation outcomes.
type StatementMetrics struct {
	calculationDuration *prometheus.HistogramVec
	calculated          *prometheus.CounterVec
	warnings            *prometheus.CounterVec
	deliveriesBlocked   prometheus.Counter
}

var (
	statementMetricsOnce sync.Once
	statementMetrics     *StatementMetrics
)

// Statement returns the process-wide statement metrics.
func Statement() *StatementMetrics {
	return StatementWithConfig(Config{})
}

// StatementWithConfig returns the process-wide statement metrics, labelled
// with the given service identity on first use.
func StatementWithConfig(cfg Config) *StatementMetrics {
	statementMetricsOnce.Do(func() {
		statementMetrics = newStatementMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return statementMetrics
}

// ResetStatementMetricsForTest clears the singleton between tests.
func ResetStatementMetricsForTest() {
	statementMetricsOnce = sync.Once{}
	statementMetrics = nil
}

func newStatementMetrics(registerer prometheus.Registerer, cfg Config) *StatementMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "payout"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	calculationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:        "payout_statement_calculation_seconds",
			Help:        "Wall time spent computing a single owner statement.",
			Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15},
			ConstLabels: constLabels,
		},
		[]string{"type"}, // checkout | calendar
	)

	calculated := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "payout_statements_calculated_total",
			Help:        "Total statements calculated by result.",
			ConstLabels: constLabels,
		},
		[]string{"result"}, // success | failed
	)

	warnings := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "payout_statement_warnings_total",
			Help:        "Data-quality warnings attached to statements.",
			ConstLabels: constLabels,
		},
		[]string{"kind"}, // duplicate_expense | cleaning_mismatch
	)

	deliveriesBlocked := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "payout_statement_deliveries_blocked_total",
			Help:        "Statement deliveries refused by the negative-payout guard.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(
		calculationDuration,
		calculated,
		warnings,
		deliveriesBlocked,
	)

	return &StatementMetrics{
		calculationDuration: calculationDuration,
		calculated:          calculated,
		warnings:            warnings,
		deliveriesBlocked:   deliveriesBlocked,
	}
}

// ObserveCalculation records the duration of one statement calculation.
func (m *StatementMetrics) ObserveCalculation(calculationType string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.calculationDuration.WithLabelValues(calculationType).Observe(elapsed.Seconds())
}

// IncCalculated counts one statement calculation by result.
func (m *StatementMetrics) IncCalculated(result string) {
	if m == nil {
		return
	}
	m.calculated.WithLabelValues(result).Inc()
}

// AddWarnings counts data-quality warnings by kind.
func (m *StatementMetrics) AddWarnings(kind string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.warnings.WithLabelValues(kind).Add(float64(count))
}

// IncDeliveryBlocked counts one refused statement delivery.
func (m *StatementMetrics) IncDeliveryBlocked() {
	if m == nil {
		return
	}
	m.deliveriesBlocked.Inc()
}
