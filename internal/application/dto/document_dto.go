package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentLineRequest línea de documento en peticiones de creación.
type DocumentLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Reason    string          `json:"reason,omitempty"`
}

// CreateReceiptRequest body para POST /api/receipts.
// DocumentNumber vacío = numeración automática (max+1).
type CreateReceiptRequest struct {
	DocumentNumber string                `json:"document_number"`
	SupplierName   string                `json:"supplier_name" validate:"required"`
	WarehouseID    string                `json:"warehouse_id" validate:"required"`
	Lines          []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateDeliveryRequest body para POST /api/deliveries. La creación
// reserva stock: falla completa con INSUFFICIENT_STOCK si alguna línea
// excede el disponible.
type CreateDeliveryRequest struct {
	DocumentNumber string                `json:"document_number"`
	CustomerName   string                `json:"customer_name" validate:"required"`
	WarehouseID    string                `json:"warehouse_id" validate:"required"`
	Lines          []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	DocumentNumber  string                `json:"document_number"`
	FromWarehouseID string                `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string                `json:"to_warehouse_id" validate:"required,nefield=FromWarehouseID"`
	Lines           []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateAdjustmentRequest body para POST /api/adjustments.
type CreateAdjustmentRequest struct {
	DocumentNumber string                `json:"document_number"`
	WarehouseID    string                `json:"warehouse_id" validate:"required"`
	Type           string                `json:"type" validate:"required,oneof=in out"`
	Lines          []DocumentLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// DocumentLineResponse línea de documento en respuestas.
type DocumentLineResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Reason    string          `json:"reason,omitempty"`
}

// DocumentResponse representación común de un documento. Los campos
// específicos de variante van con omitempty.
type DocumentResponse struct {
	ID              string                 `json:"id"`
	Type            string                 `json:"type"`
	DocumentNumber  string                 `json:"document_number"`
	Status          string                 `json:"status"`
	SupplierName    string                 `json:"supplier_name,omitempty"`
	CustomerName    string                 `json:"customer_name,omitempty"`
	WarehouseID     string                 `json:"warehouse_id,omitempty"`
	FromWarehouseID string                 `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string                 `json:"to_warehouse_id,omitempty"`
	AdjustmentType  string                 `json:"adjustment_type,omitempty"`
	Lines           []DocumentLineResponse `json:"lines"`
	CreatedBy       string                 `json:"created_by"`
	ValidatedBy     *string                `json:"validated_by,omitempty"`
	ValidationDate  *time.Time             `json:"validation_date,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

// DocumentListResponse listado paginado de documentos.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
