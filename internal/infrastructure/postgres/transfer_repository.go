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

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación de TransferRepository sobre PostgreSQL
// (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create persiste la cabecera y las líneas. Devuelve ErrDuplicate si el
// document_number ya existe.
func (r *TransferRepo) Create(transfer *entity.InternalTransfer) error {
	query := `
		INSERT INTO transfers (id, document_number, status, from_warehouse_id, to_warehouse_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		transfer.ID, transfer.DocumentNumber, transfer.Status, transfer.FromWarehouseID,
		transfer.ToWarehouseID, transfer.CreatedBy, transfer.CreatedAt, transfer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert transfer: %w", err)
	}
	return insertLines(r.q, "transfer_lines", transfer.ID, transfer.Lines)
}

// GetByID obtiene un traslado con sus líneas. Devuelve ErrNotFound si no existe.
func (r *TransferRepo) GetByID(id string) (*entity.InternalTransfer, error) {
	query := `
		SELECT id, document_number, status, from_warehouse_id, to_warehouse_id,
			created_by, validated_by, validation_date, created_at, updated_at
		FROM transfers WHERE id = $1`
	var t entity.InternalTransfer
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&t.ID, &t.DocumentNumber, &t.Status, &t.FromWarehouseID, &t.ToWarehouseID,
		&t.CreatedBy, &t.ValidatedBy, &t.ValidationDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	if t.Lines, err = loadLines(r.q, "transfer_lines", t.ID); err != nil {
		return nil, err
	}
	return &t, nil
}

// List lista traslados (cabecera + líneas) ordenados por creación descendente.
func (r *TransferRepo) List(limit, offset int) ([]*entity.InternalTransfer, error) {
	query := `
		SELECT id, document_number, status, from_warehouse_id, to_warehouse_id,
			created_by, validated_by, validation_date, created_at, updated_at
		FROM transfers ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.InternalTransfer
	for rows.Next() {
		var t entity.InternalTransfer
		if err := rows.Scan(&t.ID, &t.DocumentNumber, &t.Status, &t.FromWarehouseID, &t.ToWarehouseID,
			&t.CreatedBy, &t.ValidatedBy, &t.ValidationDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, t := range list {
		if t.Lines, err = loadLines(r.q, "transfer_lines", t.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// MarkValidated fija el estado terminal, validated_by y validation_date.
func (r *TransferRepo) MarkValidated(id, status, validatedBy string, at time.Time) error {
	return markValidated(r.q, "transfers", id, status, validatedBy, at)
}

// UpdateStatus cambia el estado (cancelación).
func (r *TransferRepo) UpdateStatus(id, status string) error {
	return updateStatus(r.q, "transfers", id, status)
}

// Delete elimina el traslado y sus líneas.
func (r *TransferRepo) Delete(id string) error {
	return deleteDocument(r.q, "transfers", id)
}

// MaxDocumentNumber devuelve el mayor document_number numérico (0 si no hay).
func (r *TransferRepo) MaxDocumentNumber() (int64, error) {
	return maxDocumentNumber(r.q, "transfers")
}
