package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateSettlementReport(ctx context.Context, data SettlementData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Settlement Report", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Company: "+data.CompanyName, props.Text{Top: 0}),
			text.New("Execution date: "+data.ExecutionDate, props.Text{Top: 4}),
			text.New("Batch: "+data.BatchID, props.Text{Top: 8}),
		),
		col.New(6),
	)

	// Table Header
	m.AddRow(10,
		text.NewCol(1, "#", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Invoice", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Supplier", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Projects", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, row := range data.Report.Rows {
		m.AddRow(12,
			text.NewCol(1, fmt.Sprintf("%d", row.Seq), props.Text{Size: 9}),
			text.NewCol(3, row.InvoiceNumbers, props.Text{Size: 9}),
			text.NewCol(3, row.SupplierName, props.Text{Size: 9}),
			text.NewCol(3, row.ProjectNames, props.Text{Size: 9}),
			text.NewCol(2, row.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	// Footer Totals
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Invoices", props.Text{Size: 9}),
		text.NewCol(2, fmt.Sprintf("%d", data.Report.InvoiceCount), props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, data.Report.TotalAmount, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
