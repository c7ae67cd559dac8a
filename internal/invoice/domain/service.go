package domain

import (
	"context"
	"errors"

	supplierdomain "github.com/smallbiznis/clearwire/internal/supplier/domain"
	"github.com/smallbiznis/clearwire/pkg/db/pagination"
)

type ListInvoiceRequest struct {
	Status *PaidStatus

	pagination.Pagination
}

type ListInvoiceResponse struct {
	Invoices []Invoice            `json:"invoices"`
	PageInfo *pagination.PageInfo `json:"page_info,omitempty"`
}

// Pair is an invoice joined with its supplier, the unit of work the export
// pipeline consumes.
type Pair struct {
	Invoice  Invoice
	Supplier supplierdomain.Supplier
}

// BulkStatusOutcome is the per-invoice result of a bulk status update.
type BulkStatusOutcome struct {
	InvoiceID string `json:"invoice_id"`
	Updated   bool   `json:"updated"`
	Reason    string `json:"reason,omitempty"`
}

type BulkStatusResult struct {
	Outcomes []BulkStatusOutcome `json:"outcomes"`
}

type Service interface {
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(ctx context.Context, id string) (Invoice, error)

	// GetPairs loads the given invoices together with their suppliers,
	// preserving the requested order.
	GetPairs(ctx context.Context, ids []string) ([]Pair, error)

	// BulkUpdateStatus sets the paid status of the given invoices,
	// reporting a per-id outcome. Unknown ids are reported, not errors.
	BulkUpdateStatus(ctx context.Context, ids []string, status PaidStatus) (BulkStatusResult, error)
}

var (
	ErrNotFound         = errors.New("invoice_not_found")
	ErrInvalidStatus    = errors.New("invalid_paid_status")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
