// Package builder derives candidate payment records from invoice and
// supplier data. Building is pure and never fails; malformed output is
// left for the validator so a whole batch can be judged in one pass.
package builder

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smallbiznis/clearwire/internal/bankcode"
	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
	invoicedomain "github.com/smallbiznis/clearwire/internal/invoice/domain"
	supplierdomain "github.com/smallbiznis/clearwire/internal/supplier/domain"
)

const (
	bankCodeWidth   = 2
	branchWidth     = 3
	accountWidth    = 9
	internalIDWidth = 9
	referenceWidth  = 20
)

// Builder turns (invoice, supplier) pairs into payment records using an
// injected bank directory.
type Builder struct {
	directory *bankcode.Directory
}

// New returns a builder backed by the given directory.
func New(directory *bankcode.Directory) *Builder {
	return &Builder{directory: directory}
}

// Build produces the candidate record for one invoice. The record is
// complete but not yet judged; run the full set through validate before
// encoding.
func (b *Builder) Build(inv invoicedomain.Invoice, sup supplierdomain.Supplier) exportdomain.PaymentRecord {
	return exportdomain.PaymentRecord{
		BankCode:         b.bankCode(sup.BankName),
		BranchNumber:     leftPadZeros(stripNonDigits(sup.BranchNumber), branchWidth),
		AccountNumber:    leftPadZeros(rightmost(stripNonDigits(sup.AccountNumber), accountWidth), accountWidth),
		AmountMinorUnits: minorUnits(inv.TotalAmount),
		SupplierName:     sup.Name,
		InternalID:       internalID(sup),
		Reference:        reference(inv),
		SourceInvoiceIDs: []string{inv.ID.String()},
		InvoiceNumbers:   []string{invoiceNumber(inv)},
		ProjectNames:     projectNames(inv.Allocations),
		AmountMajor:      inv.TotalAmount,
		HasBankDetails:   sup.HasBankDetails(),
	}
}

// BuildAll builds one record per pair, preserving input order.
func (b *Builder) BuildAll(pairs []invoicedomain.Pair) []exportdomain.PaymentRecord {
	records := make([]exportdomain.PaymentRecord, 0, len(pairs))
	for _, pair := range pairs {
		records = append(records, b.Build(pair.Invoice, pair.Supplier))
	}
	return records
}

func (b *Builder) bankCode(bankName string) string {
	code, ok := b.directory.Lookup(bankName)
	if !ok {
		code = "0"
	}
	return leftPadZeros(rightmost(stripNonDigits(code), bankCodeWidth), bankCodeWidth)
}

// internalID resolves the supplier tax identifier from the first
// non-empty source field. The precedence order is load-bearing: changing
// it changes which suppliers pass validation.
func internalID(sup supplierdomain.Supplier) string {
	sources := []string{sup.BusinessTax, sup.IDNumber, sup.TaxID}

	var raw string
	for _, source := range sources {
		if strings.TrimSpace(source) != "" {
			raw = source
			break
		}
	}

	digits := stripNonDigits(raw)
	if digits == "" || allZeros(digits) {
		// A missing id stays empty on purpose. Zero-padding it would
		// fabricate an identifier the validator could not tell apart
		// from a real one.
		return ""
	}
	if len(digits) < internalIDWidth {
		return leftPadZeros(digits, internalIDWidth)
	}
	return digits
}

func reference(inv invoicedomain.Invoice) string {
	return rightmost(invoiceNumber(inv), referenceWidth)
}

func invoiceNumber(inv invoicedomain.Invoice) string {
	number := strings.TrimSpace(inv.InvoiceNumber)
	if number == "" {
		number = inv.ID.String()
	}
	return number
}

func minorUnits(major decimal.Decimal) int64 {
	return major.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func projectNames(allocations []invoicedomain.Allocation) string {
	names := make([]string, 0, len(allocations))
	for _, alloc := range allocations {
		if strings.TrimSpace(alloc.ProjectName) == "" {
			continue
		}
		names = append(names, alloc.ProjectName)
	}
	return strings.Join(names, ", ")
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func rightmost(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func leftPadZeros(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func allZeros(s string) bool {
	for _, r := range s {
		if r != '0' {
			return false
		}
	}
	return s != ""
}
