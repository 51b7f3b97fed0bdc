package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/kasira/pkg/db/pagination"
)

type CreateProductRequest struct {
	SKU   string
	Name  string
	Price string
}

type ListProductRequest struct {
	PageToken  string
	PageSize   int32
	Name       string
	ActiveOnly bool
}

type ListProductResponse struct {
	pagination.PageInfo
	Products []Product `json:"products"`
}

type GetProductRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateProductRequest) (Product, error)
	GetByID(context.Context, GetProductRequest) (Product, error)
	List(context.Context, ListProductRequest) (ListProductResponse, error)
}

var (
	ErrInvalidSKU   = errors.New("invalid_sku")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
	ErrInactive     = errors.New("product_inactive")
)
