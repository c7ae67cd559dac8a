package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/clearwire/internal/audit/domain"
	"github.com/smallbiznis/clearwire/internal/bankcode"
	"github.com/smallbiznis/clearwire/internal/config"
	"github.com/smallbiznis/clearwire/internal/export/builder"
	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
	"github.com/smallbiznis/clearwire/internal/export/encode"
	"github.com/smallbiznis/clearwire/internal/export/reconcile"
	"github.com/smallbiznis/clearwire/internal/export/report"
	"github.com/smallbiznis/clearwire/internal/export/validate"
	invoicedomain "github.com/smallbiznis/clearwire/internal/invoice/domain"
	"github.com/smallbiznis/clearwire/internal/observability/metrics"
	"github.com/smallbiznis/clearwire/pkg/db/option"
	"github.com/smallbiznis/clearwire/pkg/repository"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Node       *snowflake.Node
	Directory  *bankcode.Directory
	Policy     *config.ExportPolicyHolder
	InvoiceSvc invoicedomain.Service
	AuditSvc   auditdomain.Service
}

// Service sequences the export pipeline. Stages up to encoding are pure
// and leave no residue on failure; the reconciliation stage is the only
// persistent side effect beyond the stored batch row.
type Service struct {
	log        *zap.Logger
	node       *snowflake.Node
	policy     *config.ExportPolicyHolder
	invoiceSvc invoicedomain.Service
	auditSvc   auditdomain.Service

	builder    *builder.Builder
	reconciler *reconcile.Reconciler
	batchrepo  repository.Repository[exportdomain.ExportBatch]
	metrics    *metrics.ExportMetrics
}

func NewService(p ServiceParam) exportdomain.Service {
	return &Service{
		log:        p.Log.Named("export.service"),
		node:       p.Node,
		policy:     p.Policy,
		invoiceSvc: p.InvoiceSvc,
		auditSvc:   p.AuditSvc,

		builder:    builder.New(p.Directory),
		reconciler: reconcile.New(p.DB, p.Log),
		batchrepo:  repository.ProvideStore[exportdomain.ExportBatch](p.DB),
		metrics:    metrics.Export(),
	}
}

func (s *Service) Export(ctx context.Context, req exportdomain.ExportRequest) (exportdomain.ExportResult, error) {
	policy := s.policy.Get()

	// A repeated id must never become a second payment instruction.
	invoiceIDs := dedupe(req.InvoiceIDs)

	if len(invoiceIDs) == 0 {
		return exportdomain.ExportResult{}, exportdomain.ErrNoEligiblePayments
	}
	if len(invoiceIDs) > policy.MaxRecordsPerBatch {
		return exportdomain.ExportResult{}, fmt.Errorf("%w: %d invoices, limit %d",
			exportdomain.ErrBatchTooLarge, len(invoiceIDs), policy.MaxRecordsPerBatch)
	}
	if req.ExecutionDate.IsZero() {
		return exportdomain.ExportResult{}, fmt.Errorf("execution date is required")
	}

	pairs, err := s.invoiceSvc.GetPairs(ctx, invoiceIDs)
	if err != nil {
		s.metrics.RecordInternalError(err)
		return exportdomain.ExportResult{}, err
	}

	records := s.builder.BuildAll(pairs)

	// Cheap fail-fast: a selection where no supplier has bank details can
	// never produce a payable batch, so skip the full pipeline.
	if !anyEligible(records) {
		s.metrics.RecordBatch(metrics.ExportOutcomeNoEligiblePayments)
		return exportdomain.ExportResult{}, exportdomain.ErrNoEligiblePayments
	}

	if errs := validate.Records(records); len(errs) > 0 {
		for _, e := range errs {
			s.metrics.RecordValidationError(e.Field)
		}
		s.metrics.RecordBatch(metrics.ExportOutcomeValidationFailed)
		s.log.Info("export rejected by validation",
			zap.Int("invoices", len(records)),
			zap.Int("violations", len(errs)),
		)
		return exportdomain.ExportResult{}, errs
	}

	encoded, err := encode.New(policy.ArtifactPrefix).Encode(records, req.ExecutionDate, req.Company)
	if err != nil {
		var encErr *exportdomain.EncodingError
		if errors.As(err, &encErr) {
			s.metrics.RecordBatch(metrics.ExportOutcomeEncodingError)
			s.log.Error("batch encoding invariant violated",
				zap.Int("row", encErr.Row),
				zap.String("reason", encErr.Reason),
			)
		} else {
			s.metrics.RecordInternalError(err)
		}
		return exportdomain.ExportResult{}, err
	}

	rep := report.New(policy.ReportLocale).Generate(records)

	batch, err := s.persistBatch(ctx, req, invoiceIDs, encoded, rep)
	if err != nil {
		s.metrics.RecordInternalError(err)
		return exportdomain.ExportResult{}, fmt.Errorf("persist batch: %w", err)
	}

	// Past this point the artifact exists and is never revoked; status
	// sync problems surface as a partial failure alongside it.
	reconciliation := s.reconciler.Reconcile(ctx, invoiceIDs)

	s.auditSvc.AuditLog(ctx, "payment_batch.exported", "export_batch", batch.ID.String(), map[string]any{
		"record_count":       encoded.RecordCount,
		"total_amount_minor": encoded.TotalAmountMinor,
		"execution_date":     req.ExecutionDate.Format("2006-01-02"),
		"transitioned":       len(reconciliation.Transitioned),
		"skipped":            len(reconciliation.Skipped),
		"failed":             len(reconciliation.Failed),
	})

	s.metrics.RecordEncoded(encoded.RecordCount, encoded.TotalAmountMinor)

	result := exportdomain.ExportResult{
		BatchID:          batch.ID.String(),
		ArtifactName:     encoded.ArtifactName,
		RecordCount:      encoded.RecordCount,
		TotalAmountMinor: encoded.TotalAmountMinor,
		Report:           rep,
		Reconciliation:   reconciliation,
	}

	if !reconciliation.Complete() {
		s.metrics.RecordBatch(metrics.ExportOutcomePartialReconcile)
		s.log.Warn("batch exported with incomplete reconciliation",
			zap.String("batch_id", result.BatchID),
			zap.Int("failed", len(reconciliation.Failed)),
		)
		return result, &exportdomain.ReconciliationPartialFailure{
			BatchID: result.BatchID,
			Result:  reconciliation,
		}
	}

	s.metrics.RecordBatch(metrics.ExportOutcomeSuccess)
	s.log.Info("batch exported",
		zap.String("batch_id", result.BatchID),
		zap.Int("records", result.RecordCount),
		zap.Int64("total_amount_minor", result.TotalAmountMinor),
	)
	return result, nil
}

func (s *Service) GetBatch(ctx context.Context, id string) (exportdomain.ExportBatch, error) {
	batch, err := s.findBatch(ctx, id)
	if err != nil {
		return exportdomain.ExportBatch{}, err
	}
	return *batch, nil
}

func (s *Service) GetArtifact(ctx context.Context, id string) (string, []byte, error) {
	batch, err := s.findBatch(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return batch.ArtifactName, batch.Artifact, nil
}

func (s *Service) GetReport(ctx context.Context, id string) (exportdomain.Report, error) {
	batch, err := s.findBatch(ctx, id)
	if err != nil {
		return exportdomain.Report{}, err
	}
	var rep exportdomain.Report
	if err := json.Unmarshal(batch.Report, &rep); err != nil {
		return exportdomain.Report{}, fmt.Errorf("decode stored report: %w", err)
	}
	return rep, nil
}

func (s *Service) persistBatch(ctx context.Context, req exportdomain.ExportRequest, ids []string, encoded *encode.Result, rep exportdomain.Report) (*exportdomain.ExportBatch, error) {
	invoiceIDs, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	reportJSON, err := json.Marshal(rep)
	if err != nil {
		return nil, err
	}

	batch := &exportdomain.ExportBatch{
		ID:               s.node.Generate(),
		ExecutionDate:    req.ExecutionDate,
		InstituteID:      req.Company.InstituteID,
		SenderID:         req.Company.SenderID,
		CompanyName:      req.Company.CompanyName,
		RecordCount:      encoded.RecordCount,
		TotalAmountMinor: encoded.TotalAmountMinor,
		InvoiceIDs:       invoiceIDs,
		ArtifactName:     encoded.ArtifactName,
		Artifact:         encoded.Artifact,
		Report:           reportJSON,
		CreatedAt:        time.Now(),
	}
	if err := s.batchrepo.Create(ctx, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func (s *Service) findBatch(ctx context.Context, id string) (*exportdomain.ExportBatch, error) {
	batch, err := s.batchrepo.FindOne(ctx, &exportdomain.ExportBatch{},
		option.ApplyOperator(option.Condition{Field: "id", Operator: option.EQ, Value: id}),
	)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, exportdomain.ErrBatchNotFound
	}
	return batch, nil
}

// dedupe drops repeated invoice ids, keeping the first occurrence so the
// requested order survives into the batch file.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func anyEligible(records []exportdomain.PaymentRecord) bool {
	for _, rec := range records {
		if rec.HasBankDetails {
			return true
		}
	}
	return false
}
