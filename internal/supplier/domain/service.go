package domain

import (
	"context"
	"errors"
)

type ListSupplierRequest struct {
	Name string
}

type ListSupplierResponse struct {
	Suppliers []Supplier `json:"suppliers"`
}

type Service interface {
	List(ctx context.Context, req ListSupplierRequest) (ListSupplierResponse, error)
	GetByID(ctx context.Context, id string) (Supplier, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]Supplier, error)
}

var (
	ErrNotFound = errors.New("supplier_not_found")
)
