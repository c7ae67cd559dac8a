package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
	"github.com/smallbiznis/clearwire/internal/export/encode"
)

func reportRecord(name string, amountMinor int64, invoiceNumber string) exportdomain.PaymentRecord {
	return exportdomain.PaymentRecord{
		BankCode:         "12",
		BranchNumber:     "005",
		AccountNumber:    "000123456",
		AmountMinorUnits: amountMinor,
		InternalID:       "512345678",
		SupplierName:     name,
		Reference:        invoiceNumber,
		InvoiceNumbers:   []string{invoiceNumber},
		ProjectNames:     "North Campus",
		HasBankDetails:   true,
	}
}

func TestGenerateSortsByHebrewCollation(t *testing.T) {
	records := []exportdomain.PaymentRecord{
		reportRecord("בית", 50000, "INV-2"),
		reportRecord("אבא", 25000, "INV-1"),
	}

	rep := New("he").Generate(records)
	require.Len(t, rep.Rows, 2)
	assert.Equal(t, "אבא", rep.Rows[0].SupplierName)
	assert.Equal(t, "בית", rep.Rows[1].SupplierName)
	assert.Equal(t, 1, rep.Rows[0].Seq)
	assert.Equal(t, 2, rep.Rows[1].Seq)
}

func TestGenerateTotalsMatchEncoderAggregate(t *testing.T) {
	records := []exportdomain.PaymentRecord{
		reportRecord("בית", 123450, "INV-2"),
		reportRecord("אבא", 980, "INV-1"),
		reportRecord("גשר", 100000, "INV-3"),
	}

	encoded, err := encode.New("payments").Encode(records,
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		exportdomain.CompanyInfo{InstituteID: "12345678", SenderID: "54321", CompanyName: "Clearwire"})
	require.NoError(t, err)

	rep := New("he").Generate(records)
	assert.Equal(t, encoded.RecordCount, rep.InvoiceCount)
	assert.Equal(t, encoded.TotalAmountMinor, rep.TotalAmountMinor)
}

func TestGenerateDoesNotMutateInput(t *testing.T) {
	records := []exportdomain.PaymentRecord{
		reportRecord("בית", 100, "INV-2"),
		reportRecord("אבא", 200, "INV-1"),
	}

	New("he").Generate(records)
	assert.Equal(t, "בית", records[0].SupplierName)
	assert.Equal(t, "אבא", records[1].SupplierName)
}

func TestGenerateFormatsAmounts(t *testing.T) {
	rep := New("en").Generate([]exportdomain.PaymentRecord{
		reportRecord("Acme", 123450, "INV-1"),
	})
	require.Len(t, rep.Rows, 1)
	assert.Equal(t, "1,234.50", rep.Rows[0].Amount)
	assert.Equal(t, "1,234.50", rep.TotalAmount)
}

func TestGenerateRowContents(t *testing.T) {
	rep := New("he").Generate([]exportdomain.PaymentRecord{
		reportRecord("Acme", 5000, "INV-42"),
	})
	require.Len(t, rep.Rows, 1)
	row := rep.Rows[0]
	assert.Equal(t, "INV-42", row.InvoiceNumbers)
	assert.Equal(t, "North Campus", row.ProjectNames)
	assert.Equal(t, int64(5000), row.AmountMinor)
}

func TestGenerateEmptySet(t *testing.T) {
	rep := New("he").Generate(nil)
	assert.Empty(t, rep.Rows)
	assert.Equal(t, 0, rep.InvoiceCount)
	assert.Equal(t, int64(0), rep.TotalAmountMinor)
}
