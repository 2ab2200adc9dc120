package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.AdjustmentRepository = (*AdjustmentRepo)(nil)

// AdjustmentRepo implementación de AdjustmentRepository sobre PostgreSQL
// (usable con pool o tx).
type AdjustmentRepo struct {
	q Querier
}

// NewAdjustmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAdjustmentRepository(q Querier) *AdjustmentRepo {
	return &AdjustmentRepo{q: q}
}

// Create persiste la cabecera y las líneas. Devuelve ErrDuplicate si el
// document_number ya existe.
func (r *AdjustmentRepo) Create(adjustment *entity.StockAdjustment) error {
	query := `
		INSERT INTO adjustments (id, document_number, status, warehouse_id, adjustment_type, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		adjustment.ID, adjustment.DocumentNumber, adjustment.Status, adjustment.WarehouseID,
		adjustment.Type, adjustment.CreatedBy, adjustment.CreatedAt, adjustment.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert adjustment: %w", err)
	}
	return insertLines(r.q, "adjustment_lines", adjustment.ID, adjustment.Lines)
}

// GetByID obtiene un ajuste con sus líneas. Devuelve ErrNotFound si no existe.
func (r *AdjustmentRepo) GetByID(id string) (*entity.StockAdjustment, error) {
	query := `
		SELECT id, document_number, status, warehouse_id, adjustment_type,
			created_by, validated_by, validation_date, created_at, updated_at
		FROM adjustments WHERE id = $1`
	var a entity.StockAdjustment
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&a.ID, &a.DocumentNumber, &a.Status, &a.WarehouseID, &a.Type,
		&a.CreatedBy, &a.ValidatedBy, &a.ValidationDate, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get adjustment: %w", err)
	}
	if a.Lines, err = loadLines(r.q, "adjustment_lines", a.ID); err != nil {
		return nil, err
	}
	return &a, nil
}

// List lista ajustes (cabecera + líneas) ordenados por creación descendente.
func (r *AdjustmentRepo) List(limit, offset int) ([]*entity.StockAdjustment, error) {
	query := `
		SELECT id, document_number, status, warehouse_id, adjustment_type,
			created_by, validated_by, validation_date, created_at, updated_at
		FROM adjustments ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockAdjustment
	for rows.Next() {
		var a entity.StockAdjustment
		if err := rows.Scan(&a.ID, &a.DocumentNumber, &a.Status, &a.WarehouseID, &a.Type,
			&a.CreatedBy, &a.ValidatedBy, &a.ValidationDate, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan adjustment: %w", err)
		}
		list = append(list, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, a := range list {
		if a.Lines, err = loadLines(r.q, "adjustment_lines", a.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// MarkValidated fija el estado terminal, validated_by y validation_date.
func (r *AdjustmentRepo) MarkValidated(id, status, validatedBy string, at time.Time) error {
	return markValidated(r.q, "adjustments", id, status, validatedBy, at)
}

// UpdateStatus cambia el estado (cancelación).
func (r *AdjustmentRepo) UpdateStatus(id, status string) error {
	return updateStatus(r.q, "adjustments", id, status)
}

// Delete elimina el ajuste y sus líneas.
func (r *AdjustmentRepo) Delete(id string) error {
	return deleteDocument(r.q, "adjustments", id)
}

// MaxDocumentNumber devuelve el mayor document_number numérico (0 si no hay).
func (r *AdjustmentRepo) MaxDocumentNumber() (int64, error) {
	return maxDocumentNumber(r.q, "adjustments")
}
