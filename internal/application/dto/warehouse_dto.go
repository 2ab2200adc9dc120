package dto

import "time"

// CreateWarehouseRequest body para POST /api/warehouses.
type CreateWarehouseRequest struct {
	Name        string `json:"name" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Description string `json:"description"`
}

// UpdateWarehouseRequest body para PUT /api/warehouses/:id.
type UpdateWarehouseRequest struct {
	Name        *string `json:"name,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// WarehouseResponse representación de una bodega.
type WarehouseResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WarehouseListResponse listado paginado.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// CreateLocationRequest body para POST /api/locations.
type CreateLocationRequest struct {
	WarehouseID string `json:"warehouse_id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// UpdateLocationRequest body para PUT /api/locations/:id.
type UpdateLocationRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// LocationResponse representación de una ubicación.
type LocationResponse struct {
	ID          string    `json:"id"`
	WarehouseID string    `json:"warehouse_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LocationListResponse listado paginado.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
