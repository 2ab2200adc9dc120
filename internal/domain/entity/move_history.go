package entity

import "time"

// MoveHistory es un hecho inmutable del historial de movimientos: una
// línea de un documento validado y su efecto sobre inventario. Solo se
// agrega, nunca se modifica; es pista de auditoría, no libro contable.
// Para documentos de una sola bodega FromWarehouseID = ToWarehouseID.
type MoveHistory struct {
	ID              string
	ProductID       string
	Quantity        int64
	FromWarehouseID string
	ToWarehouseID   string
	FromLocationID  *string
	ToLocationID    *string
	MoveType        DocumentType
	DocumentID      string
	MovedBy         string
	MovedAt         time.Time
}
