package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.MoveHistoryRepository = (*MoveHistoryRepo)(nil)

// MoveHistoryRepo implementación de MoveHistoryRepository sobre PostgreSQL
// (usable con pool o tx). La tabla es append-only.
type MoveHistoryRepo struct {
	q Querier
}

// NewMoveHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMoveHistoryRepository(q Querier) *MoveHistoryRepo {
	return &MoveHistoryRepo{q: q}
}

// Create persiste una entrada del historial.
func (r *MoveHistoryRepo) Create(move *entity.MoveHistory) error {
	if move.ID == "" {
		move.ID = uuid.New().String()
	}
	query := `
		INSERT INTO move_history (id, product_id, quantity, from_warehouse_id, to_warehouse_id,
			from_location_id, to_location_id, move_type, document_id, moved_by, moved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		move.ID, move.ProductID, move.Quantity, move.FromWarehouseID, move.ToWarehouseID,
		move.FromLocationID, move.ToLocationID, move.MoveType, move.DocumentID,
		move.MovedBy, move.MovedAt,
	)
	if err != nil {
		return fmt.Errorf("insert move history: %w", err)
	}
	return nil
}

// List filtra por producto y/o bodega (origen o destino); vacío no filtra.
func (r *MoveHistoryRepo) List(productID, warehouseID string, limit, offset int) ([]*entity.MoveHistory, error) {
	query := `
		SELECT id, product_id, quantity, from_warehouse_id, to_warehouse_id,
			from_location_id, to_location_id, move_type, document_id, moved_by, moved_at
		FROM move_history
		WHERE ($1 = '' OR product_id::text = $1)
			AND ($2 = '' OR from_warehouse_id::text = $2 OR to_warehouse_id::text = $2)
		ORDER BY moved_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, productID, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list move history: %w", err)
	}
	defer rows.Close()
	var list []*entity.MoveHistory
	for rows.Next() {
		var m entity.MoveHistory
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Quantity, &m.FromWarehouseID, &m.ToWarehouseID,
			&m.FromLocationID, &m.ToLocationID, &m.MoveType, &m.DocumentID, &m.MovedBy, &m.MovedAt); err != nil {
			return nil, fmt.Errorf("scan move history: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
