package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU           string          `json:"sku" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	Category      string          `json:"category" validate:"required"`
	UnitOfMeasure string          `json:"unit_of_measure" validate:"required"`
	Price         decimal.Decimal `json:"price"`
	ReorderLevel  int64           `json:"reorder_level"`
}

// UpdateProductRequest body para PUT /api/products/:id (campos opcionales).
type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty"`
	Category      *string          `json:"category,omitempty"`
	UnitOfMeasure *string          `json:"unit_of_measure,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	ReorderLevel  *int64           `json:"reorder_level,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

// ProductResponse representación de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	Price         decimal.Decimal `json:"price"`
	ReorderLevel  int64           `json:"reorder_level"`
	Quantity      int64           `json:"quantity"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse listado paginado.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
