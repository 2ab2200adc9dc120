package entity

import "time"

// Location representa una ubicación física dentro de una bodega
// (pasillo, estante). Opcional como tercera parte de la clave de un
// registro de inventario.
type Location struct {
	ID          string
	WarehouseID string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
