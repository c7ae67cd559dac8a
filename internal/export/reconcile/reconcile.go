// Package reconcile transitions exported invoices to their post-export
// status. Transitions are conditional per invoice, so concurrent batches
// sharing an invoice cannot double-export it: the losing update simply
// matches zero rows and is reported as skipped.
package reconcile

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
	invoicedomain "github.com/smallbiznis/clearwire/internal/invoice/domain"
	"github.com/smallbiznis/clearwire/internal/observability/metrics"
	"github.com/smallbiznis/clearwire/pkg/db"
)

// Reconciler performs the invoice status sync for encoded batches.
type Reconciler struct {
	db      *gorm.DB
	log     *zap.Logger
	metrics *metrics.ExportMetrics
}

// New returns a reconciler writing through the given database handle.
func New(db *gorm.DB, log *zap.Logger) *Reconciler {
	return &Reconciler{
		db:      db,
		log:     log.Named("export.reconcile"),
		metrics: metrics.Export(),
	}
}

// Reconcile moves each invoice from unpaid to exported_for_payment,
// conditioned on its current status. Re-running over the same ids is
// safe: already-exported invoices are reported as skipped, never as
// errors. Failures are collected per id; the caller decides whether a
// partial result is acceptable.
func (r *Reconciler) Reconcile(ctx context.Context, invoiceIDs []string) exportdomain.ReconciliationResult {
	var result exportdomain.ReconciliationResult
	for _, id := range invoiceIDs {
		res := r.transition(ctx, id)
		if res.Error != nil {
			r.log.Error("invoice status transition failed",
				zap.String("invoice_id", id),
				zap.Error(res.Error),
			)
			result.Failed = append(result.Failed, exportdomain.FailedInvoice{
				InvoiceID: id,
				Error:     res.Error.Error(),
			})
			continue
		}
		if res.RowsAffected == 1 {
			result.Transitioned = append(result.Transitioned, id)
			continue
		}

		reason, err := r.skipReason(ctx, id)
		if err != nil {
			result.Failed = append(result.Failed, exportdomain.FailedInvoice{
				InvoiceID: id,
				Error:     err.Error(),
			})
			continue
		}
		r.metrics.RecordReconcileSkip(reason)
		r.log.Info("invoice status transition skipped",
			zap.String("invoice_id", id),
			zap.String("reason", reason),
		)
		result.Skipped = append(result.Skipped, exportdomain.SkippedInvoice{
			InvoiceID: id,
			Reason:    reason,
		})
	}
	return result
}

// transition runs the conditional update, retrying once when the
// database reports a serialization conflict with a concurrent batch.
func (r *Reconciler) transition(ctx context.Context, id string) *gorm.DB {
	res := r.update(ctx, id)
	if res.Error != nil && db.IsSerializationErr(res.Error) {
		r.log.Warn("serialization conflict, retrying transition",
			zap.String("invoice_id", id),
		)
		res = r.update(ctx, id)
	}
	return res
}

func (r *Reconciler) update(ctx context.Context, id string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("id = ? AND paid_status = ?", id, invoicedomain.PaidStatusUnpaid).
		Update("paid_status", invoicedomain.PaidStatusExportedForPayment)
}

// skipReason explains why the conditional update matched nothing.
func (r *Reconciler) skipReason(ctx context.Context, id string) (string, error) {
	var invoice invoicedomain.Invoice
	err := r.db.WithContext(ctx).
		Select("paid_status").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return exportdomain.SkipReasonNotFound, nil
	}
	if err != nil {
		return "", err
	}

	switch invoice.PaidStatus {
	case invoicedomain.PaidStatusPaid:
		return exportdomain.SkipReasonAlreadyPaid, nil
	case invoicedomain.PaidStatusNotForPayment:
		return exportdomain.SkipReasonNotForPayment, nil
	default:
		return exportdomain.SkipReasonAlreadyExported, nil
	}
}
