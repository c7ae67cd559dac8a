package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Batch outcome labels. Kept low-cardinality on purpose.
const (
	ExportOutcomeSuccess            = "success"
	ExportOutcomeValidationFailed   = "validation_failed"
	ExportOutcomeNoEligiblePayments = "no_eligible_payments"
	ExportOutcomeEncodingError      = "encoding_error"
	ExportOutcomePartialReconcile   = "partial_reconciliation"
	ExportOutcomeInternalError      = "internal_error"
)

const (
	ExportErrorTypeDeadlineExceeded = "deadline_exceeded"
	ExportErrorTypeBusinessRule     = "business_rule"
	ExportErrorTypeDB               = "db"
	ExportErrorTypeUnknown          = "unknown"
)

// ExportMetrics captures payment export pipeline health signals.
type ExportMetrics struct {
	batches          *prometheus.CounterVec
	records          prometheus.Counter
	validationErrors *prometheus.CounterVec
	amountMinor      prometheus.Counter
	reconcileSkips   *prometheus.CounterVec
	failures         *prometheus.CounterVec
}

var (
	exportMetricsOnce sync.Once
	exportMetrics     *ExportMetrics
)

// Export returns the singleton export metrics registry.
func Export() *ExportMetrics {
	return ExportWithConfig(Config{})
}

// ExportWithConfig returns the singleton export metrics registry using config labels.
func ExportWithConfig(cfg Config) *ExportMetrics {
	exportMetricsOnce.Do(func() {
		exportMetrics = newExportMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return exportMetrics
}

// ResetExportMetricsForTest resets the export metrics singleton for tests.
func ResetExportMetricsForTest() {
	exportMetricsOnce = sync.Once{}
	exportMetrics = nil
}

func newExportMetrics(registerer prometheus.Registerer, cfg Config) *ExportMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)

	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "clearwire_export_batches_total",
		Help:        "Payment export batch attempts by outcome.",
		ConstLabels: labels,
	}, []string{"outcome"})
	records := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "clearwire_export_records_total",
		Help:        "Payment records written to clearing-house batch files.",
		ConstLabels: labels,
	})
	validationErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "clearwire_export_validation_errors_total",
		Help:        "Record validation failures by field.",
		ConstLabels: labels,
	}, []string{"field"})
	amountMinor := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "clearwire_export_amount_minor_units_total",
		Help:        "Aggregate exported amount in minor currency units.",
		ConstLabels: labels,
	})
	reconcileSkips := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "clearwire_export_reconcile_skips_total",
		Help:        "Invoice status transitions skipped during reconciliation.",
		ConstLabels: labels,
	}, []string{"reason"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "clearwire_export_failures_total",
		Help:        "Export pipeline internal errors by error class.",
		ConstLabels: labels,
	}, []string{"type"})

	m := &ExportMetrics{
		batches:          mustRegisterCounterVec(registerer, batches),
		validationErrors: mustRegisterCounterVec(registerer, validationErrors),
		reconcileSkips:   mustRegisterCounterVec(registerer, reconcileSkips),
		failures:         mustRegisterCounterVec(registerer, failures),
	}

	if err := registerer.Register(records); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			records = already.ExistingCollector.(prometheus.Counter)
		} else {
			panic(err)
		}
	}
	m.records = records

	if err := registerer.Register(amountMinor); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			amountMinor = already.ExistingCollector.(prometheus.Counter)
		} else {
			panic(err)
		}
	}
	m.amountMinor = amountMinor

	return m
}

// RecordBatch increments the batch counter for the given outcome.
func (m *ExportMetrics) RecordBatch(outcome string) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(strings.TrimSpace(outcome)).Inc()
}

// RecordEncoded accounts for an encoded batch's records and aggregate amount.
func (m *ExportMetrics) RecordEncoded(recordCount int, amountMinorUnits int64) {
	if m == nil {
		return
	}
	m.records.Add(float64(recordCount))
	m.amountMinor.Add(float64(amountMinorUnits))
}

// RecordValidationError increments the per-field validation failure counter.
func (m *ExportMetrics) RecordValidationError(field string) {
	if m == nil {
		return
	}
	m.validationErrors.WithLabelValues(strings.TrimSpace(field)).Inc()
}

// RecordInternalError records an internal_error batch outcome, labeled by
// the classified error type.
func (m *ExportMetrics) RecordInternalError(err error) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(ExportOutcomeInternalError).Inc()
	m.failures.WithLabelValues(ClassifyError(err)).Inc()
}

// RecordReconcileSkip increments the reconciliation skip counter.
func (m *ExportMetrics) RecordReconcileSkip(reason string) {
	if m == nil {
		return
	}
	m.reconcileSkips.WithLabelValues(strings.TrimSpace(reason)).Inc()
}

// ClassifyError maps an error to a low-cardinality type label.
func ClassifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return ExportErrorTypeDeadlineExceeded
	case isDBError(err):
		return ExportErrorTypeDB
	default:
		return ExportErrorTypeUnknown
	}
}

func isDBError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return true
	}
	return errors.Is(err, gorm.ErrInvalidTransaction) ||
		errors.Is(err, gorm.ErrInvalidDB)
}
