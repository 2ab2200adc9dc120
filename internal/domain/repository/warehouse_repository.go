package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// WarehouseRepository define el puerto de persistencia para Warehouse.
type WarehouseRepository interface {
	Create(warehouse *entity.Warehouse) error
	GetByID(id string) (*entity.Warehouse, error)
	Update(warehouse *entity.Warehouse) error
	List(limit, offset int) ([]*entity.Warehouse, error)
	Delete(id string) error
}

// LocationRepository define el puerto de persistencia para Location.
type LocationRepository interface {
	Create(location *entity.Location) error
	GetByID(id string) (*entity.Location, error)
	Update(location *entity.Location) error
	ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.Location, error)
	Delete(id string) error
}
