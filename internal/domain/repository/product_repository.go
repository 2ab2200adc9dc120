package repository

import "github.com/jhoicas/almacen-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	Update(product *entity.Product) error
	// AddQuantity suma delta (puede ser negativo) al total desnormalizado.
	AddQuantity(productID string, delta int64) error
	List(search string, limit, offset int) ([]*entity.Product, error)
	Delete(id string) error
}
