package encode

import (
	"fmt"
	"strings"
)

// Record type markers, first byte of every line.
const (
	recordTypeHeader  = "K"
	recordTypeDetail  = "1"
	recordTypeTrailer = "5"
)

// recordWidth is the fixed line width of the batch file, counted in
// characters. Every record type is padded out to this width.
const recordWidth = 79

type fieldType string

const (
	fieldText    fieldType = "text"
	fieldNumeric fieldType = "numeric"
)

// field is one slot of a fixed-width record layout. Positions are byte
// offsets from the start of the line.
type field struct {
	name     string
	position int
	length   int
	typ      fieldType
}

// layout is an ordered set of fields; positions are assigned
// contiguously by newLayout.
type layout []field

func newLayout(fields ...field) layout {
	pos := 0
	for i := range fields {
		fields[i].position = pos
		pos += fields[i].length
	}
	return fields
}

var (
	headerLayout = newLayout(
		field{name: "record_type", length: 1, typ: fieldText},
		field{name: "institute_id", length: 8, typ: fieldNumeric},
		field{name: "sender_id", length: 5, typ: fieldNumeric},
		field{name: "execution_date", length: 6, typ: fieldNumeric},
		field{name: "creation_date", length: 6, typ: fieldNumeric},
		field{name: "company_name", length: 30, typ: fieldText},
	)

	detailLayout = newLayout(
		field{name: "record_type", length: 1, typ: fieldText},
		field{name: "bank_code", length: 2, typ: fieldNumeric},
		field{name: "branch_number", length: 3, typ: fieldNumeric},
		field{name: "account_number", length: 9, typ: fieldNumeric},
		field{name: "amount", length: 13, typ: fieldNumeric},
		field{name: "internal_id", length: 9, typ: fieldNumeric},
		field{name: "supplier_name", length: 22, typ: fieldText},
		field{name: "reference", length: 20, typ: fieldText},
	)

	trailerLayout = newLayout(
		field{name: "record_type", length: 1, typ: fieldText},
		field{name: "record_count", length: 7, typ: fieldNumeric},
		field{name: "total_amount", length: 15, typ: fieldNumeric},
	)
)

// formatLine renders one record. Values must be supplied for every
// field in layout order. Numeric values that do not fit their slot are
// an error; text values are truncated and left-aligned.
func (l layout) formatLine(values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(recordWidth)
	for _, f := range l {
		value, ok := values[f.name]
		if !ok {
			return "", fmt.Errorf("layout field %s has no value", f.name)
		}
		formatted, err := f.format(value)
		if err != nil {
			return "", err
		}
		b.WriteString(formatted)
	}
	line := b.String()
	if n := len([]rune(line)); n < recordWidth {
		line += strings.Repeat(" ", recordWidth-n)
	}
	return line, nil
}

func (f field) format(value string) (string, error) {
	switch f.typ {
	case fieldNumeric:
		if len(value) > f.length {
			return "", fmt.Errorf("field %s value %q exceeds width %d", f.name, value, f.length)
		}
		for _, r := range value {
			if r < '0' || r > '9' {
				return "", fmt.Errorf("field %s value %q is not numeric", f.name, value)
			}
		}
		return strings.Repeat("0", f.length-len(value)) + value, nil
	default:
		runes := []rune(value)
		if len(runes) > f.length {
			runes = runes[:f.length]
		}
		padded := string(runes)
		if pad := f.length - len(runes); pad > 0 {
			padded += strings.Repeat(" ", pad)
		}
		return padded, nil
	}
}

// slice extracts one field's raw value from an encoded line. Positions
// count characters, not bytes, so multibyte text fields do not shift
// their neighbours.
func (l layout) slice(line string, name string) (string, error) {
	runes := []rune(line)
	for _, f := range l {
		if f.name != name {
			continue
		}
		if f.position+f.length > len(runes) {
			return "", fmt.Errorf("line too short for field %s", name)
		}
		return string(runes[f.position : f.position+f.length]), nil
	}
	return "", fmt.Errorf("layout has no field %s", name)
}
