package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoEligiblePayments is returned when none of the requested
	// invoices is in a payable state.
	ErrNoEligiblePayments = errors.New("no_eligible_payments")

	// ErrBatchNotFound is returned when an export batch id does not exist.
	ErrBatchNotFound = errors.New("export_batch_not_found")

	// ErrBatchTooLarge is returned when the record count exceeds the
	// configured per-batch ceiling.
	ErrBatchTooLarge = errors.New("export_batch_too_large")
)

// ValidationError pinpoints a single rejected field of a single record.
type ValidationError struct {
	Row       int    `json:"row"`
	InvoiceID string `json:"invoice_id,omitempty"`
	Field     string `json:"field"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// ValidationErrors is the full list of violations across a batch. The
// validator never stops at the first failure; callers get every problem
// at once.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "validation failed with %d error(s): ", len(v))
	for i, e := range v {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "row %d %s: %s", e.Row, e.Field, e.Message)
	}
	return b.String()
}

// EncodingError reports a record whose encoded form drifted from the
// fixed-width layout. It indicates a programming error, not bad input.
type EncodingError struct {
	Row    int
	Line   string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding failed at row %d: %s", e.Row, e.Reason)
}

// ReconciliationPartialFailure signals that the batch artifact was
// produced but one or more invoice status transitions failed. The
// artifact is already money-in-motion and must not be discarded.
type ReconciliationPartialFailure struct {
	BatchID string
	Result  ReconciliationResult
}

func (e *ReconciliationPartialFailure) Error() string {
	return fmt.Sprintf("batch %s exported but %d invoice status update(s) failed", e.BatchID, len(e.Result.Failed))
}
