// Package domain contains the types flowing through the payment export
// pipeline.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentRecord is one candidate credit-transfer row of a clearing-house
// batch. It is derived from an (invoice, supplier) pair, never persisted,
// and never mutated after creation; corrections require rebuilding.
type PaymentRecord struct {
	BankCode         string
	BranchNumber     string
	AccountNumber    string
	AmountMinorUnits int64
	SupplierName     string
	InternalID       string
	Reference        string
	SourceInvoiceIDs []string
	InvoiceNumbers   []string
	ProjectNames     string

	// AmountMajor retains the display-form amount for reporting.
	AmountMajor decimal.Decimal
	// HasBankDetails records whether the supplier had any registered
	// bank details when the record was built.
	HasBankDetails bool
}

// CompanyInfo identifies the submitting company to the clearing house.
type CompanyInfo struct {
	InstituteID string `json:"institute_id"`
	SenderID    string `json:"sender_id"`
	CompanyName string `json:"company_name"`
}

// ExportBatch is the persisted outcome of a successful encode: artifact
// bytes plus the report data contract, re-downloadable after the fact.
type ExportBatch struct {
	ID               snowflake.ID   `gorm:"primaryKey" json:"id"`
	ExecutionDate    time.Time      `gorm:"type:date;not null;index" json:"execution_date"`
	InstituteID      string         `gorm:"type:text;not null" json:"institute_id"`
	SenderID         string         `gorm:"type:text;not null" json:"sender_id"`
	CompanyName      string         `gorm:"type:text;not null" json:"company_name"`
	RecordCount      int            `gorm:"not null;default:0" json:"record_count"`
	TotalAmountMinor int64          `gorm:"not null;default:0" json:"total_amount_minor"`
	InvoiceIDs       datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"invoice_ids"`
	ArtifactName     string         `gorm:"type:text;not null" json:"artifact_name"`
	Artifact         []byte         `gorm:"type:bytea;not null" json:"-"`
	Report           datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"-"`
	CreatedAt        time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (ExportBatch) TableName() string { return "export_batches" }

// ReportRow is one settlement report line, amounts in major units.
type ReportRow struct {
	Seq            int    `json:"seq"`
	InvoiceNumbers string `json:"invoice_numbers"`
	SupplierName   string `json:"supplier_name"`
	ProjectNames   string `json:"project_names"`
	Amount         string `json:"amount"`
	AmountMinor    int64  `json:"amount_minor"`
}

// Report is the settlement report data contract: ordered rows plus totals.
// Visual styling is a rendering concern, not part of this contract.
type Report struct {
	Rows             []ReportRow `json:"rows"`
	InvoiceCount     int         `json:"invoice_count"`
	TotalAmountMinor int64       `json:"total_amount_minor"`
	TotalAmount      string      `json:"total_amount"`
}

// Reconciliation skip reasons.
const (
	SkipReasonAlreadyExported = "already_exported"
	SkipReasonNotForPayment   = "not_for_payment"
	SkipReasonAlreadyPaid     = "already_paid"
	SkipReasonNotFound        = "not_found"
)

// SkippedInvoice is an invoice whose status transition was a no-op.
type SkippedInvoice struct {
	InvoiceID string `json:"invoice_id"`
	Reason    string `json:"reason"`
}

// FailedInvoice is an invoice whose status transition errored and still
// needs a retried status sync.
type FailedInvoice struct {
	InvoiceID string `json:"invoice_id"`
	Error     string `json:"error"`
}

// ReconciliationResult reports the per-invoice outcome of the bulk status
// transition.
type ReconciliationResult struct {
	Transitioned []string         `json:"transitioned"`
	Skipped      []SkippedInvoice `json:"skipped"`
	Failed       []FailedInvoice  `json:"failed"`
}

// Complete reports whether every invoice is now accounted for (transitioned
// or legitimately skipped).
func (r ReconciliationResult) Complete() bool {
	return len(r.Failed) == 0
}
