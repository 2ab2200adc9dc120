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

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// Create persiste una nueva bodega. Devuelve ErrDuplicate si el nombre ya existe.
func (r *WarehouseRepo) Create(warehouse *entity.Warehouse) error {
	query := `
		INSERT INTO warehouses (id, name, location, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		warehouse.ID, warehouse.Name, warehouse.Location, warehouse.Description,
		warehouse.IsActive, warehouse.CreatedAt, warehouse.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert warehouse: %w", err)
	}
	return nil
}

// GetByID obtiene una bodega por ID. Devuelve ErrNotFound si no existe.
func (r *WarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	query := `
		SELECT id, name, location, description, is_active, created_at, updated_at
		FROM warehouses WHERE id = $1`
	var w entity.Warehouse
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&w.ID, &w.Name, &w.Location, &w.Description, &w.IsActive, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// Update actualiza una bodega existente.
func (r *WarehouseRepo) Update(warehouse *entity.Warehouse) error {
	query := `
		UPDATE warehouses SET name = $2, location = $3, description = $4, is_active = $5, updated_at = $6
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		warehouse.ID, warehouse.Name, warehouse.Location, warehouse.Description,
		warehouse.IsActive, warehouse.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update warehouse: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista bodegas con paginación.
func (r *WarehouseRepo) List(limit, offset int) ([]*entity.Warehouse, error) {
	query := `
		SELECT id, name, location, description, is_active, created_at, updated_at
		FROM warehouses ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Location, &w.Description, &w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

// Delete elimina una bodega por ID.
func (r *WarehouseRepo) Delete(id string) error {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM warehouses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete warehouse: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
