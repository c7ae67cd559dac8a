package service

import (
	"context"
	"fmt"

	invoicedomain "github.com/smallbiznis/clearwire/internal/invoice/domain"
	supplierdomain "github.com/smallbiznis/clearwire/internal/supplier/domain"
	"github.com/smallbiznis/clearwire/pkg/db/option"
	"github.com/smallbiznis/clearwire/pkg/db/pagination"
	"github.com/smallbiznis/clearwire/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	SupplierSvc supplierdomain.Service
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	invoicerepo repository.Repository[invoicedomain.Invoice]
	supplierSvc supplierdomain.Service
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("invoice.service"),

		invoicerepo: repository.ProvideStore[invoicedomain.Invoice](p.DB),
		supplierSvc: p.SupplierSvc,
	}
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	filter := &invoicedomain.Invoice{}
	if req.Status != nil {
		if !req.Status.Valid() {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidStatus
		}
		filter.PaidStatus = *req.Status
	}

	limit := req.PageSize
	if limit <= 0 {
		limit = 10
	}
	if limit > 250 {
		limit = 250
	}

	opts := []option.QueryOption{
		option.WithPreload("Allocations"),
		option.WithSortBy(option.QuerySortBy{Field: "id", Allow: map[string]bool{"id": true}}),
		option.WithLimit(limit + 1),
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidPageToken
		}
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "id", Operator: option.GT, Value: cursor.ID}))
	}

	items, err := s.invoicerepo.Find(ctx, filter, opts...)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, limit, func(item *invoicedomain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: item.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if len(items) > limit {
		items = items[:limit]
	}

	invoices := make([]invoicedomain.Invoice, 0, len(items))
	for _, item := range items {
		invoices = append(invoices, *item)
	}
	return invoicedomain.ListInvoiceResponse{Invoices: invoices, PageInfo: pageInfo}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	item, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{},
		option.WithPreload("Allocations"),
		option.ApplyOperator(option.Condition{Field: "id", Operator: option.EQ, Value: id}),
	)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if item == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) GetPairs(ctx context.Context, ids []string) ([]invoicedomain.Pair, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	items, err := s.invoicerepo.Find(ctx, &invoicedomain.Invoice{},
		option.WithPreload("Allocations"),
		option.ApplyOperator(option.Condition{Field: "id", Operator: option.IN, Value: ids}),
	)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*invoicedomain.Invoice, len(items))
	supplierIDs := make([]string, 0, len(items))
	for _, item := range items {
		byID[item.ID.String()] = item
		supplierIDs = append(supplierIDs, item.SupplierID.String())
	}

	suppliers, err := s.supplierSvc.GetByIDs(ctx, supplierIDs)
	if err != nil {
		return nil, err
	}

	// Preserve the requested invoice order; missing ids are hard errors
	// because the caller selected them explicitly.
	pairs := make([]invoicedomain.Pair, 0, len(ids))
	for _, id := range ids {
		invoice, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", invoicedomain.ErrNotFound, id)
		}
		supplier, ok := suppliers[invoice.SupplierID.String()]
		if !ok {
			return nil, fmt.Errorf("%w: invoice %s", supplierdomain.ErrNotFound, id)
		}
		pairs = append(pairs, invoicedomain.Pair{Invoice: *invoice, Supplier: supplier})
	}
	return pairs, nil
}

func (s *Service) BulkUpdateStatus(ctx context.Context, ids []string, status invoicedomain.PaidStatus) (invoicedomain.BulkStatusResult, error) {
	if !status.Valid() {
		return invoicedomain.BulkStatusResult{}, invoicedomain.ErrInvalidStatus
	}

	result := invoicedomain.BulkStatusResult{Outcomes: make([]invoicedomain.BulkStatusOutcome, 0, len(ids))}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			res := tx.Model(&invoicedomain.Invoice{}).
				Where("id = ?", id).
				Update("paid_status", status)
			if res.Error != nil {
				return res.Error
			}
			outcome := invoicedomain.BulkStatusOutcome{InvoiceID: id, Updated: res.RowsAffected == 1}
			if !outcome.Updated {
				outcome.Reason = "not_found"
			}
			result.Outcomes = append(result.Outcomes, outcome)
		}
		return nil
	})
	if err != nil {
		return invoicedomain.BulkStatusResult{}, err
	}
	return result, nil
}
