package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	auditdomain "github.com/smallbiznis/clearwire/internal/audit/domain"
	"github.com/smallbiznis/clearwire/internal/bankcode"
	"github.com/smallbiznis/clearwire/internal/config"
	exportdomain "github.com/smallbiznis/clearwire/internal/export/domain"
	invoicedomain "github.com/smallbiznis/clearwire/internal/invoice/domain"
	"github.com/smallbiznis/clearwire/internal/observability"
	obsmiddleware "github.com/smallbiznis/clearwire/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/clearwire/internal/observability/metrics"
	obstracing "github.com/smallbiznis/clearwire/internal/observability/tracing"
	"github.com/smallbiznis/clearwire/internal/providers/pdf"
	supplierdomain "github.com/smallbiznis/clearwire/internal/supplier/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	db          *gorm.DB
	genID       *snowflake.Node
	directory   *bankcode.Directory
	exportSvc   exportdomain.Service
	invoiceSvc  invoicedomain.Service
	supplierSvc supplierdomain.Service
	auditSvc    auditdomain.Service
	pdfProvider pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	Directory   *bankcode.Directory
	ExportSvc   exportdomain.Service
	InvoiceSvc  invoicedomain.Service
	SupplierSvc supplierdomain.Service
	AuditSvc    auditdomain.Service
	PDFProvider pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		directory:   p.Directory,
		exportSvc:   p.ExportSvc,
		invoiceSvc:  p.InvoiceSvc,
		supplierSvc: p.SupplierSvc,
		auditSvc:    p.AuditSvc,
		pdfProvider: p.PDFProvider,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	exports := v1.Group("/payment-exports")
	exports.POST("", s.CreatePaymentExport)
	exports.GET("/:id", s.GetPaymentExport)
	exports.GET("/:id/artifact", s.DownloadPaymentExportArtifact)
	exports.GET("/:id/report", s.GetPaymentExportReport)
	exports.GET("/:id/report.pdf", s.DownloadPaymentExportReportPDF)

	invoices := v1.Group("/invoices")
	invoices.GET("", s.ListInvoices)
	invoices.GET("/:id", s.GetInvoice)
	invoices.POST("/bulk-status", s.BulkUpdateInvoiceStatus)

	suppliers := v1.Group("/suppliers")
	suppliers.GET("", s.ListSuppliers)
	suppliers.GET("/:id", s.GetSupplier)

	v1.GET("/bank-codes", s.ListBankCodes)
}
