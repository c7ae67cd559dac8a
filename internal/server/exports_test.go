package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/clearwire/internal/audit/domain"
	auditservice "github.com/smallbiznis/clearwire/internal/audit/service"
	"github.com/smallbiznis/clearwire/internal/bankcode"
	"github.com/smallbiznis/clearwire/internal/config"
	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
	exportservice "github.com/smallbiznis/clearwire/internal/export/service"
	invoicedomain "github.com/smallbiznis/clearwire/internal/invoice/domain"
	invoiceservice "github.com/smallbiznis/clearwire/internal/invoice/service"
	"github.com/smallbiznis/clearwire/internal/providers/pdf"
	supplierdomain "github.com/smallbiznis/clearwire/internal/supplier/domain"
	supplierservice "github.com/smallbiznis/clearwire/internal/supplier/service"
)

type serverEnv struct {
	srv  *Server
	db   *gorm.DB
	node *snowflake.Node
}

func setupServer(t *testing.T, nodeID int64) *serverEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:server%d?mode=memory&cache=shared", nodeID)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&supplierdomain.Supplier{},
		&invoicedomain.Invoice{},
		&invoicedomain.Allocation{},
		&exportdomain.ExportBatch{},
		&auditdomain.AuditLog{},
	))

	node, err := snowflake.NewNode(nodeID)
	require.NoError(t, err)
	log := zap.NewNop()

	holder, err := config.NewStaticExportPolicyHolder(config.DefaultExportPolicy())
	require.NoError(t, err)

	supplierSvc := supplierservice.NewService(supplierservice.ServiceParam{DB: db, Log: log})
	invoiceSvc := invoiceservice.NewService(invoiceservice.ServiceParam{DB: db, Log: log, SupplierSvc: supplierSvc})
	auditSvc := auditservice.NewService(auditservice.ServiceParam{DB: db, Log: log, GenID: node})
	directory := bankcode.New(map[string]string{"Bank X": "12"})

	exportSvc := exportservice.NewService(exportservice.ServiceParam{
		DB:         db,
		Log:        log,
		Node:       node,
		Directory:  directory,
		Policy:     holder,
		InvoiceSvc: invoiceSvc,
		AuditSvc:   auditSvc,
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:         engine,
		Cfg:         config.Config{},
		DB:          db,
		GenID:       node,
		Directory:   directory,
		ExportSvc:   exportSvc,
		InvoiceSvc:  invoiceSvc,
		SupplierSvc: supplierSvc,
		AuditSvc:    auditSvc,
		PDFProvider: pdf.New(),
	})

	return &serverEnv{srv: srv, db: db, node: node}
}

func (e *serverEnv) seedPayableInvoice(t *testing.T, supplierName string) invoicedomain.Invoice {
	t.Helper()
	supplier := supplierdomain.Supplier{
		ID:            e.node.Generate(),
		Name:          supplierName,
		BusinessTax:   "512345678",
		BankName:      "Bank X",
		BranchNumber:  "5",
		AccountNumber: "123456",
	}
	require.NoError(t, e.db.Create(&supplier).Error)

	invoice := invoicedomain.Invoice{
		ID:            e.node.Generate(),
		InvoiceNumber: "INV-" + supplier.ID.String(),
		SupplierID:    supplier.ID,
		TotalAmount:   decimal.RequireFromString("100.00"),
		PaidStatus:    invoicedomain.PaidStatusUnpaid,
	}
	require.NoError(t, e.db.Create(&invoice).Error)
	return invoice
}

func (e *serverEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.srv.Engine().ServeHTTP(w, req)
	return w
}

func TestCreatePaymentExportEndpoint(t *testing.T) {
	env := setupServer(t, 30)
	invoice := env.seedPayableInvoice(t, "Acme Supplies")

	w := env.do(t, http.MethodPost, "/v1/payment-exports", gin.H{
		"invoice_ids":    []string{invoice.ID.String()},
		"execution_date": "2026-02-01",
		"company_info": gin.H{
			"institute_id": "12345678",
			"sender_id":    "54321",
			"company_name": "Clearwire Ltd",
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp paymentExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.BatchID)
	assert.Equal(t, 1, resp.RecordCount)
	assert.Equal(t, int64(10000), resp.TotalAmountMinor)
	assert.Empty(t, resp.Warnings)

	// The artifact is downloadable afterwards.
	download := env.do(t, http.MethodGet, "/v1/payment-exports/"+resp.BatchID+"/artifact", nil)
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, "application/zip", download.Header().Get("Content-Type"))
	assert.Contains(t, download.Header().Get("Content-Disposition"), "payments_2026-02-01.zip")

	report := env.do(t, http.MethodGet, "/v1/payment-exports/"+resp.BatchID+"/report", nil)
	require.Equal(t, http.StatusOK, report.Code)
}

func TestCreatePaymentExportValidationErrorList(t *testing.T) {
	env := setupServer(t, 31)

	// Bank details present, no tax identifier: validator rejects row 0.
	supplier := supplierdomain.Supplier{
		ID:            env.node.Generate(),
		Name:          "Broken Ltd",
		BankName:      "Bank X",
		BranchNumber:  "5",
		AccountNumber: "123456",
	}
	require.NoError(t, env.db.Create(&supplier).Error)
	invoice := invoicedomain.Invoice{
		ID:            env.node.Generate(),
		InvoiceNumber: "INV-1",
		SupplierID:    supplier.ID,
		TotalAmount:   decimal.RequireFromString("10.00"),
		PaidStatus:    invoicedomain.PaidStatusUnpaid,
	}
	require.NoError(t, env.db.Create(&invoice).Error)

	w := env.do(t, http.MethodPost, "/v1/payment-exports", gin.H{
		"invoice_ids":    []string{invoice.ID.String()},
		"execution_date": "2026-02-01",
		"company_info": gin.H{
			"institute_id": "12345678",
			"sender_id":    "54321",
			"company_name": "Clearwire Ltd",
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
	require.Len(t, resp.Error.Errors, 1)
	assert.Equal(t, "records[0].internal_id", resp.Error.Errors[0].Field)
}

func TestCreatePaymentExportNoEligiblePayments(t *testing.T) {
	env := setupServer(t, 32)

	supplier := supplierdomain.Supplier{ID: env.node.Generate(), Name: "Cash Only", BusinessTax: "512345678"}
	require.NoError(t, env.db.Create(&supplier).Error)
	invoice := invoicedomain.Invoice{
		ID:            env.node.Generate(),
		InvoiceNumber: "INV-1",
		SupplierID:    supplier.ID,
		TotalAmount:   decimal.RequireFromString("10.00"),
		PaidStatus:    invoicedomain.PaidStatusUnpaid,
	}
	require.NoError(t, env.db.Create(&invoice).Error)

	w := env.do(t, http.MethodPost, "/v1/payment-exports", gin.H{
		"invoice_ids":    []string{invoice.ID.String()},
		"execution_date": "2026-02-01",
		"company_info":   gin.H{"institute_id": "12345678", "sender_id": "54321", "company_name": "Clearwire"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "no_eligible_payments", resp.Error.Type)
}

func TestCreatePaymentExportRejectsBadDate(t *testing.T) {
	env := setupServer(t, 33)

	w := env.do(t, http.MethodPost, "/v1/payment-exports", gin.H{
		"invoice_ids":    []string{"1"},
		"execution_date": "01/02/2026",
		"company_info":   gin.H{"institute_id": "1", "sender_id": "1", "company_name": "x"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Error.Errors, 1)
	assert.Equal(t, "execution_date", resp.Error.Errors[0].Field)
}

func TestGetPaymentExportNotFound(t *testing.T) {
	env := setupServer(t, 34)

	w := env.do(t, http.MethodGet, "/v1/payment-exports/123456789", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestBulkUpdateInvoiceStatusEndpoint(t *testing.T) {
	env := setupServer(t, 35)
	invoice := env.seedPayableInvoice(t, "Acme")
	missing := env.node.Generate().String()

	w := env.do(t, http.MethodPost, "/v1/invoices/bulk-status", gin.H{
		"invoice_ids": []string{invoice.ID.String(), missing},
		"status":      "paid",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result invoicedomain.BulkStatusResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Outcomes, 2)
	assert.True(t, result.Outcomes[0].Updated)
	assert.False(t, result.Outcomes[1].Updated)
	assert.Equal(t, "not_found", result.Outcomes[1].Reason)
}

func TestListBankCodesEndpoint(t *testing.T) {
	env := setupServer(t, 36)

	w := env.do(t, http.MethodGet, "/v1/bank-codes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bank X")
	assert.NotContains(t, w.Body.String(), "bank x")
}
