package encode

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
)

var testCompany = exportdomain.CompanyInfo{
	InstituteID: "12345678",
	SenderID:    "54321",
	CompanyName: "Clearwire Ltd",
}

func testRecord(bank, branch, account string, amount int64, name string) exportdomain.PaymentRecord {
	return exportdomain.PaymentRecord{
		BankCode:         bank,
		BranchNumber:     branch,
		AccountNumber:    account,
		AmountMinorUnits: amount,
		InternalID:       "512345678",
		SupplierName:     name,
		Reference:        "INV-1001",
		HasBankDetails:   true,
	}
}

func newTestEncoder() *Encoder {
	e := New("payments")
	e.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestEncodeRoundTrip(t *testing.T) {
	records := []exportdomain.PaymentRecord{
		testRecord("12", "005", "000123456", 123450, "Acme Supplies"),
		testRecord("10", "001", "000000042", 980, "ספקי הצפון"),
	}
	execDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	result, err := newTestEncoder().Encode(records, execDate, testCompany)
	require.NoError(t, err)
	assert.Equal(t, 2, result.RecordCount)
	assert.Equal(t, int64(124430), result.TotalAmountMinor)
	assert.Equal(t, "payments_20260115.txt", result.FileName)
	assert.Equal(t, "payments_2026-01-15.zip", result.ArtifactName)

	decoded, err := Decode(result.Content)
	require.NoError(t, err)
	assert.Equal(t, "12345678", decoded.InstituteID)
	assert.Equal(t, "54321", decoded.SenderID)
	assert.Equal(t, "260115", decoded.ExecutionDate)
	assert.Equal(t, "Clearwire Ltd", decoded.CompanyName)
	assert.Equal(t, 2, decoded.RecordCount)
	assert.Equal(t, int64(124430), decoded.TotalAmount)

	require.Len(t, decoded.Details, 2)
	for i, want := range records {
		assert.Equal(t, want.BankCode, decoded.Details[i].BankCode)
		assert.Equal(t, want.BranchNumber, decoded.Details[i].BranchNumber)
		assert.Equal(t, want.AccountNumber, decoded.Details[i].AccountNumber)
		assert.Equal(t, want.AmountMinorUnits, decoded.Details[i].AmountMinorUnits)
		assert.Equal(t, want.SupplierName, decoded.Details[i].SupplierName)
		assert.Equal(t, want.Reference, decoded.Details[i].Reference)
	}
}

func TestEncodePreservesRecordOrder(t *testing.T) {
	records := []exportdomain.PaymentRecord{
		testRecord("20", "001", "000000001", 100, "Zulu"),
		testRecord("10", "002", "000000002", 200, "Alpha"),
	}
	result, err := newTestEncoder().Encode(records, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), testCompany)
	require.NoError(t, err)

	decoded, err := Decode(result.Content)
	require.NoError(t, err)
	require.Len(t, decoded.Details, 2)
	assert.Equal(t, "Zulu", decoded.Details[0].SupplierName)
	assert.Equal(t, "Alpha", decoded.Details[1].SupplierName)
}

func TestEncodeEveryLineFixedWidth(t *testing.T) {
	records := []exportdomain.PaymentRecord{
		testRecord("12", "005", "000123456", 123450, "Acme"),
	}
	result, err := newTestEncoder().Encode(records, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), testCompany)
	require.NoError(t, err)

	for _, line := range bytes.Split([]byte(result.Content), []byte("\r\n")) {
		if len(line) == 0 {
			continue
		}
		assert.Len(t, []rune(string(line)), recordWidth)
	}
}

func TestEncodeWidthDriftFailsWithEncodingError(t *testing.T) {
	// A 10-digit account can only reach the encoder if validation was
	// skipped; the layer must refuse rather than emit a shifted line.
	records := []exportdomain.PaymentRecord{
		testRecord("12", "005", "1234567890", 100, "Acme"),
	}
	_, err := newTestEncoder().Encode(records, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), testCompany)
	require.Error(t, err)

	var encErr *exportdomain.EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, 0, encErr.Row)
}

func TestEncodeNonNumericFieldFailsWithEncodingError(t *testing.T) {
	records := []exportdomain.PaymentRecord{
		testRecord("1x", "005", "000123456", 100, "Acme"),
	}
	_, err := newTestEncoder().Encode(records, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), testCompany)

	var encErr *exportdomain.EncodingError
	require.True(t, errors.As(err, &encErr))
}

func TestEncodeEmptySetRejected(t *testing.T) {
	_, err := newTestEncoder().Encode(nil, time.Now(), testCompany)
	assert.Error(t, err)
}

func TestEncodeArtifactIsReadableZip(t *testing.T) {
	records := []exportdomain.PaymentRecord{
		testRecord("12", "005", "000123456", 123450, "Acme"),
	}
	result, err := newTestEncoder().Encode(records, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), testCompany)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(result.Artifact), int64(len(result.Artifact)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "payments_20260115.txt", zr.File[0].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, result.Content, string(content))
}
