// Package report renders the settlement report data contract for an
// encoded batch: rows ordered by supplier name under locale-aware
// collation, amounts in major units with thousands separators, and
// totals that must equal the encoder's aggregates.
package report

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
)

// Generator builds settlement reports for a fixed locale.
type Generator struct {
	collator *collate.Collator
	printer  *message.Printer
}

// New returns a generator for the given BCP 47 locale tag. An empty or
// unparseable tag falls back to Hebrew, the locale the settlement
// reports are read in.
func New(locale string) *Generator {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.Hebrew
	}
	return &Generator{
		collator: collate.New(tag),
		printer:  message.NewPrinter(tag),
	}
}

// Generate produces the report for a validated record set. The input
// slice is not modified; sorting happens on a copy.
func (g *Generator) Generate(records []exportdomain.PaymentRecord) exportdomain.Report {
	sorted := make([]exportdomain.PaymentRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return g.collator.CompareString(sorted[i].SupplierName, sorted[j].SupplierName) < 0
	})

	var totalMinor int64
	rows := make([]exportdomain.ReportRow, 0, len(sorted))
	for i, rec := range sorted {
		totalMinor += rec.AmountMinorUnits
		rows = append(rows, exportdomain.ReportRow{
			Seq:            i + 1,
			InvoiceNumbers: strings.Join(rec.InvoiceNumbers, ", "),
			SupplierName:   rec.SupplierName,
			ProjectNames:   rec.ProjectNames,
			Amount:         g.formatAmount(rec.AmountMinorUnits),
			AmountMinor:    rec.AmountMinorUnits,
		})
	}

	return exportdomain.Report{
		Rows:             rows,
		InvoiceCount:     len(rows),
		TotalAmountMinor: totalMinor,
		TotalAmount:      g.formatAmount(totalMinor),
	}
}

// formatAmount renders minor units as a major-unit string with locale
// grouping, e.g. 123450 -> "1,234.50".
func (g *Generator) formatAmount(minor int64) string {
	major := float64(minor) / 100
	return g.printer.Sprint(number.Decimal(major,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}
