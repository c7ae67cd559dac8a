package encode

import (
	"fmt"
	"strconv"
	"strings"
)

// DecodedBatch is a batch file read back from its serialized form.
type DecodedBatch struct {
	InstituteID   string
	SenderID      string
	ExecutionDate string
	CompanyName   string
	Details       []DecodedDetail
	RecordCount   int
	TotalAmount   int64
}

// DecodedDetail is one detail line in parsed form.
type DecodedDetail struct {
	BankCode         string
	BranchNumber     string
	AccountNumber    string
	AmountMinorUnits int64
	InternalID       string
	SupplierName     string
	Reference        string
}

// Decode parses a batch file back into its records. Used by round-trip
// tests and by operators inspecting a produced file.
func Decode(content string) (*DecodedBatch, error) {
	batch := &DecodedBatch{}
	sawHeader := false
	sawTrailer := false

	for i, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if sawTrailer {
			return nil, fmt.Errorf("line %d: content after trailer", i+1)
		}
		switch line[:1] {
		case recordTypeHeader:
			if sawHeader {
				return nil, fmt.Errorf("line %d: duplicate header", i+1)
			}
			if err := decodeHeader(line, batch); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			sawHeader = true
		case recordTypeDetail:
			detail, err := decodeDetail(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			batch.Details = append(batch.Details, detail)
		case recordTypeTrailer:
			if err := decodeTrailer(line, batch); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			sawTrailer = true
		default:
			return nil, fmt.Errorf("line %d: unknown record type %q", i+1, line[:1])
		}
	}

	if !sawHeader {
		return nil, fmt.Errorf("missing header record")
	}
	if !sawTrailer {
		return nil, fmt.Errorf("missing trailer record")
	}
	if batch.RecordCount != len(batch.Details) {
		return nil, fmt.Errorf("trailer count %d, found %d detail records", batch.RecordCount, len(batch.Details))
	}
	return batch, nil
}

func decodeHeader(line string, batch *DecodedBatch) error {
	var err error
	if batch.InstituteID, err = headerLayout.slice(line, "institute_id"); err != nil {
		return err
	}
	if batch.SenderID, err = headerLayout.slice(line, "sender_id"); err != nil {
		return err
	}
	if batch.ExecutionDate, err = headerLayout.slice(line, "execution_date"); err != nil {
		return err
	}
	name, err := headerLayout.slice(line, "company_name")
	if err != nil {
		return err
	}
	batch.CompanyName = strings.TrimRight(name, " ")
	return nil
}

func decodeDetail(line string) (DecodedDetail, error) {
	var d DecodedDetail
	var err error
	if d.BankCode, err = detailLayout.slice(line, "bank_code"); err != nil {
		return d, err
	}
	if d.BranchNumber, err = detailLayout.slice(line, "branch_number"); err != nil {
		return d, err
	}
	if d.AccountNumber, err = detailLayout.slice(line, "account_number"); err != nil {
		return d, err
	}
	amount, err := detailLayout.slice(line, "amount")
	if err != nil {
		return d, err
	}
	if d.AmountMinorUnits, err = strconv.ParseInt(amount, 10, 64); err != nil {
		return d, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if d.InternalID, err = detailLayout.slice(line, "internal_id"); err != nil {
		return d, err
	}
	name, err := detailLayout.slice(line, "supplier_name")
	if err != nil {
		return d, err
	}
	d.SupplierName = strings.TrimRight(name, " ")
	ref, err := detailLayout.slice(line, "reference")
	if err != nil {
		return d, err
	}
	d.Reference = strings.TrimRight(ref, " ")
	return d, nil
}

func decodeTrailer(line string, batch *DecodedBatch) error {
	count, err := trailerLayout.slice(line, "record_count")
	if err != nil {
		return err
	}
	if batch.RecordCount, err = strconv.Atoi(count); err != nil {
		return fmt.Errorf("parse record count %q: %w", count, err)
	}
	total, err := trailerLayout.slice(line, "total_amount")
	if err != nil {
		return err
	}
	if batch.TotalAmount, err = strconv.ParseInt(total, 10, 64); err != nil {
		return fmt.Errorf("parse total amount %q: %w", total, err)
	}
	return nil
}
