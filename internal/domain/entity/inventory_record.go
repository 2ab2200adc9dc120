package entity

import (
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
)

// InventoryRecord representa la existencia de un producto en una bodega
// (y opcionalmente una ubicación dentro de ella). Clave única:
// (ProductID, WarehouseID, LocationID-o-nulo); una ubicación nula es una
// clave distinta de cualquier ubicación concreta.
//
// Invariante permanente: OnHand = Available + Reserved, con
// OnHand >= Reserved >= 0 y Available >= 0. Toda mutación pasa por
// ApplyDelta, que recalcula Available y rechaza estados inválidos.
type InventoryRecord struct {
	ProductID   string
	WarehouseID string
	LocationID  *string
	OnHand      int64
	Reserved    int64
	Available   int64
	UpdatedAt   time.Time
}

// ApplyDelta aplica deltas sobre OnHand y Reserved y recalcula Available.
// Devuelve ErrInvariantViolation si el resultado dejaría
// OnHand < 0, Reserved < 0 o Reserved > OnHand; en ese caso el registro
// no se modifica.
func (r *InventoryRecord) ApplyDelta(onHandDelta, reservedDelta int64) error {
	onHand := r.OnHand + onHandDelta
	reserved := r.Reserved + reservedDelta
	if onHand < 0 || reserved < 0 || reserved > onHand {
		return domain.ErrInvariantViolation
	}
	r.OnHand = onHand
	r.Reserved = reserved
	r.Available = onHand - reserved
	return nil
}

// Clone devuelve una copia del registro (para verificación en seco).
func (r *InventoryRecord) Clone() *InventoryRecord {
	c := *r
	return &c
}

// LocationKey devuelve la ubicación como string ("" = sin ubicación),
// útil como parte de clave de mapa.
func (r *InventoryRecord) LocationKey() string {
	if r.LocationID == nil {
		return ""
	}
	return *r.LocationID
}
