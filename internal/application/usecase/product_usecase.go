package usecase

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para el catálogo de productos.
// Quantity no se modifica por aquí: lo sincroniza el motor de validación.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un producto con SKU único y cantidad inicial cero.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	existing, err := uc.repo.GetBySKU(in.SKU)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:            uuid.New().String(),
		SKU:           in.SKU,
		Name:          in.Name,
		Category:      in.Category,
		UnitOfMeasure: in.UnitOfMeasure,
		Price:         in.Price,
		ReorderLevel:  in.ReorderLevel,
		Quantity:      0,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Update actualiza los campos enviados de un producto.
func (uc *ProductUseCase) Update(id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.UnitOfMeasure != nil {
		product.UnitOfMeasure = *in.UnitOfMeasure
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.ReorderLevel != nil {
		product.ReorderLevel = *in.ReorderLevel
	}
	if in.IsActive != nil {
		product.IsActive = *in.IsActive
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos con búsqueda por nombre/SKU y paginación.
func (uc *ProductUseCase) List(search string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(search, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un producto por ID.
func (uc *ProductUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Category:      p.Category,
		UnitOfMeasure: p.UnitOfMeasure,
		Price:         p.Price,
		ReorderLevel:  p.ReorderLevel,
		Quantity:      p.Quantity,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
