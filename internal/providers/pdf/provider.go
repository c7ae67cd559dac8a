package pdf

import (
	"context"
	"io"

	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
)

// Provider renders settlement reports as downloadable documents.
type Provider interface {
	GenerateSettlementReport(ctx context.Context, data SettlementData) (io.Reader, error)
}

// SettlementData is everything the rendered report shows beyond the
// report data contract itself.
type SettlementData struct {
	CompanyName   string
	ExecutionDate string
	BatchID       string
	Report        exportdomain.Report
}
