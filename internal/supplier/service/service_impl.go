package service

import (
	"context"
	"strings"

	supplierdomain "github.com/smallbiznis/clearwire/internal/supplier/domain"
	"github.com/smallbiznis/clearwire/pkg/db/option"
	"github.com/smallbiznis/clearwire/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	supplierrepo repository.Repository[supplierdomain.Supplier]
}

func NewService(p ServiceParam) supplierdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("supplier.service"),

		supplierrepo: repository.ProvideStore[supplierdomain.Supplier](p.DB),
	}
}

func (s *Service) List(ctx context.Context, req supplierdomain.ListSupplierRequest) (supplierdomain.ListSupplierResponse, error) {
	filter := &supplierdomain.Supplier{}
	if name := strings.TrimSpace(req.Name); name != "" {
		filter.Name = name
	}

	items, err := s.supplierrepo.Find(ctx, filter,
		option.WithSortBy(option.QuerySortBy{Field: "name", Allow: map[string]bool{"name": true, "created_at": true}}),
	)
	if err != nil {
		return supplierdomain.ListSupplierResponse{}, err
	}

	suppliers := make([]supplierdomain.Supplier, 0, len(items))
	for _, item := range items {
		suppliers = append(suppliers, *item)
	}
	return supplierdomain.ListSupplierResponse{Suppliers: suppliers}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (supplierdomain.Supplier, error) {
	item, err := s.supplierrepo.FindOne(ctx, &supplierdomain.Supplier{}, option.ApplyOperator(option.Condition{
		Field:    "id",
		Operator: option.EQ,
		Value:    id,
	}))
	if err != nil {
		return supplierdomain.Supplier{}, err
	}
	if item == nil {
		return supplierdomain.Supplier{}, supplierdomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) GetByIDs(ctx context.Context, ids []string) (map[string]supplierdomain.Supplier, error) {
	if len(ids) == 0 {
		return map[string]supplierdomain.Supplier{}, nil
	}

	items, err := s.supplierrepo.Find(ctx, &supplierdomain.Supplier{}, option.ApplyOperator(option.Condition{
		Field:    "id",
		Operator: option.IN,
		Value:    ids,
	}))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]supplierdomain.Supplier, len(items))
	for _, item := range items {
		byID[item.ID.String()] = *item
	}
	return byID, nil
}
