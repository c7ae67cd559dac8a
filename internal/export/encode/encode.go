// Package encode serializes a validated record set into the fixed-width
// clearing-house batch file and wraps it in a downloadable archive.
// Inputs are assumed pre-validated; any width drift found here is an
// internal defect, not a user error.
package encode

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
)

// Result is the encoded artifact plus the aggregates the report and the
// persisted batch row are reconciled against.
type Result struct {
	FileName         string
	ArtifactName     string
	Artifact         []byte
	Content          string
	RecordCount      int
	TotalAmountMinor int64
}

// Encoder renders batch files. Records are serialized in the order
// supplied; ordering is the caller's concern.
type Encoder struct {
	prefix string
	now    func() time.Time
}

// New returns an encoder whose artifact names start with prefix.
func New(prefix string) *Encoder {
	return &Encoder{prefix: prefix, now: time.Now}
}

// Encode serializes records into a header, one detail line per record,
// and a trailer carrying count and total, then zips the file.
func (e *Encoder) Encode(records []exportdomain.PaymentRecord, executionDate time.Time, company exportdomain.CompanyInfo) (*Result, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("nothing to encode")
	}

	lines := make([]string, 0, len(records)+2)

	header, err := headerLayout.formatLine(map[string]string{
		"record_type":    recordTypeHeader,
		"institute_id":   digitsOnly(company.InstituteID),
		"sender_id":      digitsOnly(company.SenderID),
		"execution_date": executionDate.Format("060102"),
		"creation_date":  e.now().Format("060102"),
		"company_name":   company.CompanyName,
	})
	if err != nil {
		return nil, &exportdomain.EncodingError{Row: -1, Reason: fmt.Sprintf("header: %v", err)}
	}
	lines = append(lines, header)

	var total int64
	for row, rec := range records {
		amount := strconv.FormatInt(rec.AmountMinorUnits, 10)
		line, err := detailLayout.formatLine(map[string]string{
			"record_type":    recordTypeDetail,
			"bank_code":      rec.BankCode,
			"branch_number":  rec.BranchNumber,
			"account_number": rec.AccountNumber,
			"amount":         amount,
			"internal_id":    rec.InternalID,
			"supplier_name":  rec.SupplierName,
			"reference":      rec.Reference,
		})
		if err != nil {
			return nil, &exportdomain.EncodingError{Row: row, Reason: err.Error()}
		}
		if err := recheckDetail(line, rec); err != nil {
			return nil, &exportdomain.EncodingError{Row: row, Line: line, Reason: err.Error()}
		}
		lines = append(lines, line)
		total += rec.AmountMinorUnits
	}

	trailer, err := trailerLayout.formatLine(map[string]string{
		"record_type":  recordTypeTrailer,
		"record_count": strconv.Itoa(len(records)),
		"total_amount": strconv.FormatInt(total, 10),
	})
	if err != nil {
		return nil, &exportdomain.EncodingError{Row: -1, Reason: fmt.Sprintf("trailer: %v", err)}
	}
	lines = append(lines, trailer)

	content := strings.Join(lines, "\r\n") + "\r\n"
	fileName := fmt.Sprintf("%s_%s.txt", e.prefix, executionDate.Format("20060102"))
	artifact, err := zipArtifact(fileName, content)
	if err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}

	return &Result{
		FileName:         fileName,
		ArtifactName:     fmt.Sprintf("%s_%s.zip", e.prefix, executionDate.Format("2006-01-02")),
		Artifact:         artifact,
		Content:          content,
		RecordCount:      len(records),
		TotalAmountMinor: total,
	}, nil
}

// recheckDetail re-reads the serialized line and compares it to the
// source record. Unreachable when validation ran first; kept to catch
// drift between the validation rules and this layout.
func recheckDetail(line string, rec exportdomain.PaymentRecord) error {
	if n := len([]rune(line)); n != recordWidth {
		return fmt.Errorf("line width %d, want %d", n, recordWidth)
	}
	checks := []struct {
		field string
		want  string
	}{
		{field: "bank_code", want: rec.BankCode},
		{field: "branch_number", want: rec.BranchNumber},
		{field: "account_number", want: rec.AccountNumber},
		{field: "amount", want: fmt.Sprintf("%013d", rec.AmountMinorUnits)},
		{field: "internal_id", want: rec.InternalID},
	}
	for _, c := range checks {
		got, err := detailLayout.slice(line, c.field)
		if err != nil {
			return err
		}
		if got != c.want {
			return fmt.Errorf("field %s serialized as %q, want %q", c.field, got, c.want)
		}
	}
	return nil
}

func zipArtifact(fileName, content string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(fileName)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte(content)); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
