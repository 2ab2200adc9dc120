package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación del puerto LocationRepository sobre PostgreSQL.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de persistencia para ubicaciones.
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Create persiste una ubicación. Devuelve ErrDuplicate si el nombre ya
// existe dentro de la misma bodega.
func (r *LocationRepo) Create(location *entity.Location) error {
	query := `
		INSERT INTO locations (id, warehouse_id, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		location.ID, location.WarehouseID, location.Name, location.Description,
		location.IsActive, location.CreatedAt, location.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

// GetByID obtiene una ubicación por ID. Devuelve ErrNotFound si no existe.
func (r *LocationRepo) GetByID(id string) (*entity.Location, error) {
	query := `
		SELECT id, warehouse_id, name, description, is_active, created_at, updated_at
		FROM locations WHERE id = $1`
	var l entity.Location
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&l.ID, &l.WarehouseID, &l.Name, &l.Description, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return &l, nil
}

// Update actualiza una ubicación existente.
func (r *LocationRepo) Update(location *entity.Location) error {
	query := `
		UPDATE locations SET name = $2, description = $3, is_active = $4, updated_at = $5
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		location.ID, location.Name, location.Description, location.IsActive, location.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByWarehouse lista las ubicaciones de una bodega con paginación.
func (r *LocationRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.Location, error) {
	query := `
		SELECT id, warehouse_id, name, description, is_active, created_at, updated_at
		FROM locations WHERE warehouse_id = $1 ORDER BY name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		var l entity.Location
		if err := rows.Scan(&l.ID, &l.WarehouseID, &l.Name, &l.Description, &l.IsActive, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// Delete elimina una ubicación por ID.
func (r *LocationRepo) Delete(id string) error {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
