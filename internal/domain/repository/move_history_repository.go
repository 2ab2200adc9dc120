package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// MoveHistoryRepository define el puerto para el historial de movimientos.
// Solo inserción y lectura plana: el historial es append-only.
type MoveHistoryRepository interface {
	Create(move *entity.MoveHistory) error
	// List filtra por producto y/o bodega (origen o destino); vacío no filtra.
	List(productID, warehouseID string, limit, offset int) ([]*entity.MoveHistory, error)
}
