package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL
// (usable con pool o tx). La clave lógica es (product_id, warehouse_id,
// location_id-o-nulo); el índice único usa COALESCE(location_id::text, '')
// para que el nulo cuente como una clave propia.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// Get obtiene el registro de inventario; si no existe devuelve uno en
// cero con la clave solicitada (la fila se materializa en el primer
// GetForUpdate o Upsert).
func (r *InventoryRepo) Get(productID, warehouseID string, locationID *string) (*entity.InventoryRecord, error) {
	rec, found, err := r.get(productID, warehouseID, locationID, false)
	if err != nil {
		return nil, err
	}
	if !found {
		return &entity.InventoryRecord{ProductID: productID, WarehouseID: warehouseID, LocationID: locationID}, nil
	}
	return rec, nil
}

// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE).
// Sobre una fila inexistente FOR UPDATE no bloquea nada (read committed
// no toma candados de predicado), y dos transacciones concurrentes
// leerían ambas el registro en cero y la segunda pisaría a la primera.
// Por eso una clave ausente se materializa primero en cero con
// ON CONFLICT DO NOTHING y se relee con el candado: el INSERT espera a
// cualquier tx que esté creando la misma fila, y la relectura siempre
// encuentra una fila que sostener.
func (r *InventoryRepo) GetForUpdate(productID, warehouseID string, locationID *string) (*entity.InventoryRecord, error) {
	rec, found, err := r.get(productID, warehouseID, locationID, true)
	if err != nil {
		return nil, err
	}
	if found {
		return rec, nil
	}

	insert := `
		INSERT INTO inventory_records (product_id, warehouse_id, location_id, on_hand, reserved, available, updated_at)
		VALUES ($1, $2, $3, 0, 0, 0, now())
		ON CONFLICT (product_id, warehouse_id, COALESCE(location_id::text, '')) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), insert, productID, warehouseID, locationID); err != nil {
		return nil, fmt.Errorf("materialize inventory record: %w", err)
	}

	rec, found, err = r.get(productID, warehouseID, locationID, true)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("inventory record (%s, %s) desapareció tras materializarse", productID, warehouseID)
	}
	return rec, nil
}

func (r *InventoryRepo) get(productID, warehouseID string, locationID *string, forUpdate bool) (*entity.InventoryRecord, bool, error) {
	query := `
		SELECT product_id, warehouse_id, location_id, on_hand, reserved, available, updated_at
		FROM inventory_records
		WHERE product_id = $1 AND warehouse_id = $2 AND COALESCE(location_id::text, '') = COALESCE($3, '')`
	if forUpdate {
		query += `
		FOR UPDATE`
	}
	var rec entity.InventoryRecord
	err := r.q.QueryRow(context.Background(), query, productID, warehouseID, locationID).Scan(
		&rec.ProductID, &rec.WarehouseID, &rec.LocationID,
		&rec.OnHand, &rec.Reserved, &rec.Available, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get inventory record: %w", err)
	}
	return &rec, true, nil
}

// Upsert inserta o actualiza un registro de inventario por su clave.
// Escribe valores absolutos: el que muta debe haber tomado antes la
// fila con GetForUpdate en la misma transacción.
func (r *InventoryRepo) Upsert(record *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory_records (product_id, warehouse_id, location_id, on_hand, reserved, available, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (product_id, warehouse_id, COALESCE(location_id::text, ''))
		DO UPDATE SET on_hand = EXCLUDED.on_hand, reserved = EXCLUDED.reserved,
			available = EXCLUDED.available, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query,
		record.ProductID, record.WarehouseID, record.LocationID,
		record.OnHand, record.Reserved, record.Available,
	)
	if err != nil {
		return fmt.Errorf("upsert inventory record: %w", err)
	}
	return nil
}

// List filtra por producto y/o bodega; cadenas vacías no filtran.
func (r *InventoryRepo) List(productID, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	query := `
		SELECT product_id, warehouse_id, location_id, on_hand, reserved, available, updated_at
		FROM inventory_records
		WHERE ($1 = '' OR product_id::text = $1) AND ($2 = '' OR warehouse_id::text = $2)
		ORDER BY product_id, warehouse_id, COALESCE(location_id::text, '')
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, productID, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory records: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		var rec entity.InventoryRecord
		if err := rows.Scan(&rec.ProductID, &rec.WarehouseID, &rec.LocationID,
			&rec.OnHand, &rec.Reserved, &rec.Available, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
