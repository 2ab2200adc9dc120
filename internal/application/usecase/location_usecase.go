package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// LocationUseCase casos de uso CRUD para ubicaciones dentro de bodegas.
type LocationUseCase struct {
	repo       repository.LocationRepository
	warehouses repository.WarehouseRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository, warehouses repository.WarehouseRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo, warehouses: warehouses}
}

// Create crea una ubicación; la bodega debe existir.
func (uc *LocationUseCase) Create(in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if _, err := uc.warehouses.GetByID(in.WarehouseID); err != nil {
		return nil, err
	}
	now := time.Now()
	location := &entity.Location{
		ID:          uuid.New().String(),
		WarehouseID: in.WarehouseID,
		Name:        in.Name,
		Description: in.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// GetByID obtiene una ubicación por ID.
func (uc *LocationUseCase) GetByID(id string) (*dto.LocationResponse, error) {
	location, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// Update actualiza los campos enviados de una ubicación.
func (uc *LocationUseCase) Update(id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	location, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		location.Name = *in.Name
	}
	if in.Description != nil {
		location.Description = *in.Description
	}
	if in.IsActive != nil {
		location.IsActive = *in.IsActive
	}
	location.UpdatedAt = time.Now()
	if err := uc.repo.Update(location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// ListByWarehouse lista ubicaciones de una bodega con paginación.
func (uc *LocationUseCase) ListByWarehouse(warehouseID string, limit, offset int) (*dto.LocationListResponse, error) {
	list, err := uc.repo.ListByWarehouse(warehouseID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina una ubicación por ID.
func (uc *LocationUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:          l.ID,
		WarehouseID: l.WarehouseID,
		Name:        l.Name,
		Description: l.Description,
		IsActive:    l.IsActive,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
