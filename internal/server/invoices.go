package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	invoicedomain "github.com/smallbiznis/clearwire/internal/invoice/domain"
)

func (s *Server) ListInvoices(c *gin.Context) {
	req := invoicedomain.ListInvoiceRequest{}
	if err := c.ShouldBindQuery(&req.Pagination); err != nil {
		AbortWithError(c, newValidationError("page_size", "invalid_pagination", "invalid pagination parameters"))
		return
	}
	if raw, ok := c.GetQuery("status"); ok {
		status := invoicedomain.PaidStatus(raw)
		if !status.Valid() {
			AbortWithError(c, newValidationError("status", "invalid_status", "unknown paid status"))
			return
		}
		req.Status = &status
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetInvoice(c *gin.Context) {
	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

type bulkInvoiceStatusRequest struct {
	InvoiceIDs []string `json:"invoice_ids" binding:"required,min=1"`
	Status     string   `json:"status" binding:"required"`
}

// BulkUpdateInvoiceStatus is the status-sync collaborator surface:
// unconditional per-id updates with per-id outcomes. The export
// pipeline's own conditional transition does not go through here.
func (s *Server) BulkUpdateInvoiceStatus(c *gin.Context) {
	var req bulkInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request"))
		return
	}

	status := invoicedomain.PaidStatus(req.Status)
	if !status.Valid() {
		AbortWithError(c, newValidationError("status", "invalid_status", "unknown paid status"))
		return
	}

	result, err := s.invoiceSvc.BulkUpdateStatus(c.Request.Context(), req.InvoiceIDs, status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.auditSvc.AuditLog(c.Request.Context(), "invoice.bulk_status", "invoice", "", map[string]any{
		"status": req.Status,
		"count":  len(req.InvoiceIDs),
	})

	c.JSON(http.StatusOK, result)
}
