package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
)

func validRecord() exportdomain.PaymentRecord {
	return exportdomain.PaymentRecord{
		BankCode:         "12",
		BranchNumber:     "005",
		AccountNumber:    "000123456",
		AmountMinorUnits: 123450,
		SupplierName:     "Acme Supplies",
		InternalID:       "512345678",
		Reference:        "INV-1001",
		SourceInvoiceIDs: []string{"1"},
		HasBankDetails:   true,
	}
}

func TestRecordsValidSetHasNoErrors(t *testing.T) {
	errs := Records([]exportdomain.PaymentRecord{validRecord(), validRecord()})
	assert.Empty(t, errs)
}

func TestRecordsPerFieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*exportdomain.PaymentRecord)
		field  string
		code   string
	}{
		{
			name:   "bank code too short",
			mutate: func(r *exportdomain.PaymentRecord) { r.BankCode = "1" },
			field:  FieldBankCode,
			code:   CodeBadWidth,
		},
		{
			name:   "bank code not numeric",
			mutate: func(r *exportdomain.PaymentRecord) { r.BankCode = "1x" },
			field:  FieldBankCode,
			code:   CodeNotNumeric,
		},
		{
			name:   "branch wrong width",
			mutate: func(r *exportdomain.PaymentRecord) { r.BranchNumber = "0005" },
			field:  FieldBranchNumber,
			code:   CodeBadWidth,
		},
		{
			name:   "account wrong width",
			mutate: func(r *exportdomain.PaymentRecord) { r.AccountNumber = "12345678" },
			field:  FieldAccountNumber,
			code:   CodeBadWidth,
		},
		{
			name:   "supplier name blank",
			mutate: func(r *exportdomain.PaymentRecord) { r.SupplierName = "   " },
			field:  FieldSupplierName,
			code:   CodeMissing,
		},
		{
			name:   "amount zero",
			mutate: func(r *exportdomain.PaymentRecord) { r.AmountMinorUnits = 0 },
			field:  FieldAmount,
			code:   CodeNotPositive,
		},
		{
			name:   "amount negative",
			mutate: func(r *exportdomain.PaymentRecord) { r.AmountMinorUnits = -100 },
			field:  FieldAmount,
			code:   CodeNotPositive,
		},
		{
			name:   "internal id empty",
			mutate: func(r *exportdomain.PaymentRecord) { r.InternalID = "" },
			field:  FieldInternalID,
			code:   CodeMissing,
		},
		{
			name:   "internal id wrong width",
			mutate: func(r *exportdomain.PaymentRecord) { r.InternalID = "1234567890" },
			field:  FieldInternalID,
			code:   CodeBadWidth,
		},
		{
			name:   "internal id all zeros",
			mutate: func(r *exportdomain.PaymentRecord) { r.InternalID = "000000000" },
			field:  FieldInternalID,
			code:   CodeAllZero,
		},
		{
			name:   "no bank details",
			mutate: func(r *exportdomain.PaymentRecord) { r.HasBankDetails = false },
			field:  FieldBankDetails,
			code:   CodeMissing,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)

			errs := Records([]exportdomain.PaymentRecord{rec})
			assert.Len(t, errs, 1)
			assert.Equal(t, 0, errs[0].Row)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.code, errs[0].Code)
		})
	}
}

func TestRecordsReportsEveryRow(t *testing.T) {
	// Rows 0 and 2 each carry one defect; row 1 is clean. The validator
	// must surface both defects, never just the first.
	first := validRecord()
	first.BranchNumber = "5"
	second := validRecord()
	third := validRecord()
	third.InternalID = "000000000"

	errs := Records([]exportdomain.PaymentRecord{first, second, third})
	assert.Len(t, errs, 2)
	assert.Equal(t, 0, errs[0].Row)
	assert.Equal(t, FieldBranchNumber, errs[0].Field)
	assert.Equal(t, 2, errs[1].Row)
	assert.Equal(t, FieldInternalID, errs[1].Field)
}

func TestRecordsAccumulatesWithinARow(t *testing.T) {
	rec := validRecord()
	rec.BankCode = "x"
	rec.AmountMinorUnits = 0
	rec.InternalID = ""

	errs := Records([]exportdomain.PaymentRecord{rec})
	assert.Len(t, errs, 3)

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{FieldBankCode, FieldAmount, FieldInternalID}, fields)
}
