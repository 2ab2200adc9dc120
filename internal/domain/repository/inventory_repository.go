package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// InventoryRepository define el puerto para consultar/actualizar registros
// de inventario por (producto, bodega, ubicación-o-nula).
// Usado dentro de transacciones para garantizar consistencia.
type InventoryRepository interface {
	// Get devuelve el registro; si no existe devuelve uno en cero con la
	// clave solicitada, sin crear nada.
	Get(productID, warehouseID string, locationID *string) (*entity.InventoryRecord, error)
	// GetForUpdate bloquea la fila para la transacción en curso. Una
	// clave ausente se materializa en cero antes de bloquear: el que
	// llama siempre recibe una fila que nadie más puede mutar hasta el
	// commit.
	GetForUpdate(productID, warehouseID string, locationID *string) (*entity.InventoryRecord, error)
	Upsert(record *entity.InventoryRecord) error
	// List filtra por producto y/o bodega; cadenas vacías no filtran.
	List(productID, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error)
}
