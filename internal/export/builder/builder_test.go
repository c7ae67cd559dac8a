package builder

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/clearwire/internal/bankcode"
	invoicedomain "github.com/smallbiznis/clearwire/internal/invoice/domain"
	supplierdomain "github.com/smallbiznis/clearwire/internal/supplier/domain"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	return New(bankcode.New(map[string]string{
		"Bank X": "12",
		"Bank Y": "10",
	}))
}

func newTestInvoice(t *testing.T, number string, amount string) invoicedomain.Invoice {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	total, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	return invoicedomain.Invoice{
		ID:            node.Generate(),
		InvoiceNumber: number,
		TotalAmount:   total,
		PaidStatus:    invoicedomain.PaidStatusUnpaid,
	}
}

func TestBuild(t *testing.T) {
	b := newTestBuilder(t)

	inv := newTestInvoice(t, "INV-1001", "1234.50")
	sup := supplierdomain.Supplier{
		Name:          "Acme Supplies",
		BusinessTax:   "512345678",
		BankName:      "Bank X",
		BranchNumber:  "5",
		AccountNumber: "123456",
	}

	rec := b.Build(inv, sup)
	assert.Equal(t, "12", rec.BankCode)
	assert.Equal(t, "005", rec.BranchNumber)
	assert.Equal(t, "000123456", rec.AccountNumber)
	assert.Equal(t, int64(123450), rec.AmountMinorUnits)
	assert.Equal(t, "512345678", rec.InternalID)
	assert.Equal(t, "INV-1001", rec.Reference)
	assert.Equal(t, []string{inv.ID.String()}, rec.SourceInvoiceIDs)
	assert.True(t, rec.HasBankDetails)
}

func TestBuildUnknownBankDefaultsToZeroCode(t *testing.T) {
	b := newTestBuilder(t)

	rec := b.Build(newTestInvoice(t, "INV-1", "10.00"), supplierdomain.Supplier{
		Name: "No Bank Ltd",
	})
	assert.Equal(t, "00", rec.BankCode)
	assert.False(t, rec.HasBankDetails)
}

func TestBuildAccountNumberBoundaries(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		name    string
		account string
		want    string
	}{
		{name: "short is left padded", account: "1234", want: "000001234"},
		{name: "exact width unchanged", account: "123456789", want: "123456789"},
		{name: "long keeps rightmost nine", account: "98123456789", want: "123456789"},
		{name: "separators stripped", account: "12-345/6", want: "000123456"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := b.Build(newTestInvoice(t, "INV-1", "1.00"), supplierdomain.Supplier{
				Name:          "Acme",
				BankName:      "Bank X",
				BranchNumber:  "1",
				AccountNumber: tt.account,
			})
			assert.Equal(t, tt.want, rec.AccountNumber)
		})
	}
}

func TestInternalIDPrecedence(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		name string
		sup  supplierdomain.Supplier
		want string
	}{
		{
			name: "business tax wins over the rest",
			sup:  supplierdomain.Supplier{BusinessTax: "511111111", IDNumber: "200000000", TaxID: "300000000"},
			want: "511111111",
		},
		{
			name: "id number when business tax empty",
			sup:  supplierdomain.Supplier{IDNumber: "200000000", TaxID: "300000000"},
			want: "200000000",
		},
		{
			name: "tax id last",
			sup:  supplierdomain.Supplier{TaxID: "300000000"},
			want: "300000000",
		},
		{
			name: "short id is left padded",
			sup:  supplierdomain.Supplier{BusinessTax: "1234567"},
			want: "001234567",
		},
		{
			name: "all zeros stays empty",
			sup:  supplierdomain.Supplier{BusinessTax: "000000000"},
			want: "",
		},
		{
			name: "no digits stays empty",
			sup:  supplierdomain.Supplier{BusinessTax: "n/a"},
			want: "",
		},
		{
			name: "everything empty stays empty",
			sup:  supplierdomain.Supplier{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := b.Build(newTestInvoice(t, "INV-1", "1.00"), tt.sup)
			assert.Equal(t, tt.want, rec.InternalID)
		})
	}
}

func TestReferenceFallsBackToInvoiceID(t *testing.T) {
	b := newTestBuilder(t)

	inv := newTestInvoice(t, "", "1.00")
	rec := b.Build(inv, supplierdomain.Supplier{Name: "Acme"})
	assert.Equal(t, inv.ID.String(), rec.Reference)

	long := newTestInvoice(t, "INVOICE-NUMBER-2026-000123456", "1.00")
	rec = b.Build(long, supplierdomain.Supplier{Name: "Acme"})
	assert.Len(t, rec.Reference, 20)
	assert.Equal(t, "NUMBER-2026-000123456"[1:], rec.Reference)
}

func TestProjectNamesJoined(t *testing.T) {
	b := newTestBuilder(t)

	inv := newTestInvoice(t, "INV-1", "1.00")
	inv.Allocations = []invoicedomain.Allocation{
		{ProjectName: "North Campus"},
		{ProjectName: ""},
		{ProjectName: "Harbor Line"},
	}
	rec := b.Build(inv, supplierdomain.Supplier{Name: "Acme"})
	assert.Equal(t, "North Campus, Harbor Line", rec.ProjectNames)
}

func TestAmountRounding(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		amount string
		want   int64
	}{
		{amount: "1234.50", want: 123450},
		{amount: "0.005", want: 1},
		{amount: "99.999", want: 10000},
		{amount: "0", want: 0},
	}
	for _, tt := range tests {
		rec := b.Build(newTestInvoice(t, "INV-1", tt.amount), supplierdomain.Supplier{Name: "Acme"})
		assert.Equal(t, tt.want, rec.AmountMinorUnits, "amount %s", tt.amount)
	}
}
