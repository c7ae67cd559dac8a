package domain

import (
	"context"
	"time"
)

// ExportRequest is one attempt to produce a payment batch from a set of
// approved invoices.
type ExportRequest struct {
	InvoiceIDs    []string
	ExecutionDate time.Time
	Company       CompanyInfo
}

// ExportResult is the outcome of a successful (or partially reconciled)
// export: the persisted batch plus the per-invoice transition outcomes.
type ExportResult struct {
	BatchID          string               `json:"batch_id"`
	ArtifactName     string               `json:"artifact_name"`
	RecordCount      int                  `json:"record_count"`
	TotalAmountMinor int64                `json:"total_amount_minor"`
	Report           Report               `json:"report"`
	Reconciliation   ReconciliationResult `json:"reconciliation"`
}

// Service orchestrates the export pipeline: fetch, build, validate,
// encode, persist, report, reconcile.
type Service interface {
	// Export runs the full pipeline for the given invoices. All-or-nothing
	// up to encoding; once the artifact exists it survives reconciliation
	// failures (see ReconciliationPartialFailure).
	Export(ctx context.Context, req ExportRequest) (ExportResult, error)

	// GetBatch returns a previously produced batch by id.
	GetBatch(ctx context.Context, id string) (ExportBatch, error)

	// GetArtifact returns the stored artifact bytes and filename.
	GetArtifact(ctx context.Context, id string) (string, []byte, error)

	// GetReport returns the stored settlement report data contract.
	GetReport(ctx context.Context, id string) (Report, error)
}
