// Package validate certifies a full record set before encoding. Every
// rule is evaluated against every row; the caller always receives the
// complete violation list. Fail-closed: one bad record blocks the batch.
package validate

import (
	"fmt"
	"strings"

	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
)

// Field names reported in validation errors.
const (
	FieldBankDetails   = "bank_details"
	FieldBankCode      = "bank_code"
	FieldBranchNumber  = "branch_number"
	FieldAccountNumber = "account_number"
	FieldSupplierName  = "supplier_name"
	FieldAmount        = "amount_minor_units"
	FieldInternalID    = "internal_id"
)

// Error codes reported in validation errors.
const (
	CodeMissing     = "missing"
	CodeBadWidth    = "bad_width"
	CodeNotNumeric  = "not_numeric"
	CodeNotPositive = "not_positive"
	CodeAllZero     = "all_zero"
)

type rule struct {
	field string
	check func(exportdomain.PaymentRecord) (code, message string)
}

// rules are independent; none suppresses another, within a row or
// across rows.
var rules = []rule{
	{field: FieldBankDetails, check: checkBankDetails},
	{field: FieldBankCode, check: exactDigits(FieldBankCode, func(r exportdomain.PaymentRecord) string { return r.BankCode }, 2)},
	{field: FieldBranchNumber, check: exactDigits(FieldBranchNumber, func(r exportdomain.PaymentRecord) string { return r.BranchNumber }, 3)},
	{field: FieldAccountNumber, check: exactDigits(FieldAccountNumber, func(r exportdomain.PaymentRecord) string { return r.AccountNumber }, 9)},
	{field: FieldSupplierName, check: checkSupplierName},
	{field: FieldAmount, check: checkAmount},
	{field: FieldInternalID, check: checkInternalID},
}

// Records checks every rule against every record and returns all
// violations found. A nil result means the set is encodable.
func Records(records []exportdomain.PaymentRecord) exportdomain.ValidationErrors {
	var errs exportdomain.ValidationErrors
	for row, record := range records {
		invoiceID := ""
		if len(record.SourceInvoiceIDs) > 0 {
			invoiceID = record.SourceInvoiceIDs[0]
		}
		for _, rule := range rules {
			code, message := rule.check(record)
			if code == "" {
				continue
			}
			errs = append(errs, exportdomain.ValidationError{
				Row:       row,
				InvoiceID: invoiceID,
				Field:     rule.field,
				Code:      code,
				Message:   message,
			})
		}
	}
	return errs
}

// checkBankDetails rejects suppliers with no registered bank account.
// Without it a missing bank resolves to the syntactically valid default
// code "00" and the row would pass on pattern checks alone.
func checkBankDetails(r exportdomain.PaymentRecord) (string, string) {
	if r.HasBankDetails {
		return "", ""
	}
	return CodeMissing, "supplier has no registered bank details"
}

func checkSupplierName(r exportdomain.PaymentRecord) (string, string) {
	if strings.TrimSpace(r.SupplierName) != "" {
		return "", ""
	}
	return CodeMissing, "supplier name is empty"
}

func checkAmount(r exportdomain.PaymentRecord) (string, string) {
	if r.AmountMinorUnits > 0 {
		return "", ""
	}
	return CodeNotPositive, "amount must be a positive number of minor units"
}

func checkInternalID(r exportdomain.PaymentRecord) (string, string) {
	switch {
	case r.InternalID == "":
		return CodeMissing, "no resolvable tax identifier"
	case !isDigits(r.InternalID) || len(r.InternalID) != 9:
		return CodeBadWidth, "internal id must be exactly 9 digits"
	case strings.Trim(r.InternalID, "0") == "":
		return CodeAllZero, "internal id must not be all zeros"
	}
	return "", ""
}

func exactDigits(field string, get func(exportdomain.PaymentRecord) string, width int) func(exportdomain.PaymentRecord) (string, string) {
	return func(r exportdomain.PaymentRecord) (string, string) {
		value := get(r)
		if len(value) != width {
			return CodeBadWidth, fmt.Sprintf("%s must be exactly %d digits", field, width)
		}
		if !isDigits(value) {
			return CodeNotNumeric, field + " must contain digits only"
		}
		return "", ""
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
