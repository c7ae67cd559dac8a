package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
	"github.com/smallbiznis/clearwire/internal/providers/pdf"
)

type createPaymentExportRequest struct {
	InvoiceIDs    []string                 `json:"invoice_ids" binding:"required,min=1"`
	ExecutionDate string                   `json:"execution_date" binding:"required"`
	CompanyInfo   exportdomain.CompanyInfo `json:"company_info" binding:"required"`
}

type paymentExportResponse struct {
	exportdomain.ExportResult
	Warnings []string `json:"warnings,omitempty"`
}

// CreatePaymentExport runs the export pipeline for the selected
// invoices. A partial reconciliation still returns the batch; the
// failures ride along as warnings because the artifact is already
// money-in-motion.
func (s *Server) CreatePaymentExport(c *gin.Context) {
	var req createPaymentExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	executionDate, err := time.Parse("2006-01-02", req.ExecutionDate)
	if err != nil {
		AbortWithError(c, newValidationError("execution_date", "invalid_date", "execution_date must be YYYY-MM-DD"))
		return
	}

	result, err := s.exportSvc.Export(c.Request.Context(), exportdomain.ExportRequest{
		InvoiceIDs:    req.InvoiceIDs,
		ExecutionDate: executionDate,
		Company:       req.CompanyInfo,
	})

	var partial *exportdomain.ReconciliationPartialFailure
	if errors.As(err, &partial) {
		resp := paymentExportResponse{ExportResult: result}
		for _, failed := range partial.Result.Failed {
			resp.Warnings = append(resp.Warnings,
				fmt.Sprintf("invoice %s status sync failed: %s", failed.InvoiceID, failed.Error))
		}
		c.JSON(http.StatusOK, resp)
		return
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, paymentExportResponse{ExportResult: result})
}

func (s *Server) GetPaymentExport(c *gin.Context) {
	batch, err := s.exportSvc.GetBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (s *Server) DownloadPaymentExportArtifact(c *gin.Context) {
	name, artifact, err := s.exportSvc.GetArtifact(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "application/zip", artifact)
}

func (s *Server) GetPaymentExportReport(c *gin.Context) {
	report, err := s.exportSvc.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) DownloadPaymentExportReportPDF(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	batch, err := s.exportSvc.GetBatch(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	report, err := s.exportSvc.GetReport(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdfProvider.GenerateSettlementReport(ctx, pdf.SettlementData{
		CompanyName:   batch.CompanyName,
		ExecutionDate: batch.ExecutionDate.Format("2006-01-02"),
		BatchID:       batch.ID.String(),
		Report:        report,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	doc, err := io.ReadAll(reader)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "settlement_"+batch.ExecutionDate.Format("2006-01-02")+".pdf"))
	c.Data(http.StatusOK, "application/pdf", doc)
}
