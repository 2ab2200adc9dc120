package dto

import "time"

// InventoryRecordResponse registro de inventario en la pantalla de stock.
type InventoryRecordResponse struct {
	ProductID   string    `json:"product_id"`
	WarehouseID string    `json:"warehouse_id"`
	LocationID  *string   `json:"location_id,omitempty"`
	OnHand      int64     `json:"on_hand"`
	Reserved    int64     `json:"reserved"`
	Available   int64     `json:"available"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StockSnapshotResponse snapshot de inventario con filtros opcionales.
type StockSnapshotResponse struct {
	Items []InventoryRecordResponse `json:"items"`
	Page  PageResponse              `json:"page"`
}

// MoveHistoryResponse entrada del historial de movimientos.
type MoveHistoryResponse struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	Quantity        int64     `json:"quantity"`
	FromWarehouseID string    `json:"from_warehouse_id"`
	ToWarehouseID   string    `json:"to_warehouse_id"`
	FromLocationID  *string   `json:"from_location_id,omitempty"`
	ToLocationID    *string   `json:"to_location_id,omitempty"`
	MoveType        string    `json:"move_type"`
	DocumentID      string    `json:"document_id"`
	MovedBy         string    `json:"moved_by"`
	MovedAt         time.Time `json:"moved_at"`
}

// MoveHistoryListResponse listado del historial.
type MoveHistoryListResponse struct {
	Items []MoveHistoryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
