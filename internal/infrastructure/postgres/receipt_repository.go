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

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo implementación de ReceiptRepository sobre PostgreSQL
// (usable con pool o tx).
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// Create persiste la cabecera y las líneas. Devuelve ErrDuplicate si el
// document_number ya existe (colisión de numeración automática).
func (r *ReceiptRepo) Create(receipt *entity.Receipt) error {
	query := `
		INSERT INTO receipts (id, document_number, status, supplier_name, warehouse_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		receipt.ID, receipt.DocumentNumber, receipt.Status, receipt.SupplierName,
		receipt.WarehouseID, receipt.CreatedBy, receipt.CreatedAt, receipt.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return insertLines(r.q, "receipt_lines", receipt.ID, receipt.Lines)
}

// GetByID obtiene una recepción con sus líneas. Devuelve ErrNotFound si no existe.
func (r *ReceiptRepo) GetByID(id string) (*entity.Receipt, error) {
	query := `
		SELECT id, document_number, status, supplier_name, warehouse_id,
			created_by, validated_by, validation_date, created_at, updated_at
		FROM receipts WHERE id = $1`
	var rec entity.Receipt
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&rec.ID, &rec.DocumentNumber, &rec.Status, &rec.SupplierName, &rec.WarehouseID,
		&rec.CreatedBy, &rec.ValidatedBy, &rec.ValidationDate, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	if rec.Lines, err = loadLines(r.q, "receipt_lines", rec.ID); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List lista recepciones (cabecera + líneas) ordenadas por creación descendente.
func (r *ReceiptRepo) List(limit, offset int) ([]*entity.Receipt, error) {
	query := `
		SELECT id, document_number, status, supplier_name, warehouse_id,
			created_by, validated_by, validation_date, created_at, updated_at
		FROM receipts ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Receipt
	for rows.Next() {
		var rec entity.Receipt
		if err := rows.Scan(&rec.ID, &rec.DocumentNumber, &rec.Status, &rec.SupplierName, &rec.WarehouseID,
			&rec.CreatedBy, &rec.ValidatedBy, &rec.ValidationDate, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		list = append(list, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, rec := range list {
		if rec.Lines, err = loadLines(r.q, "receipt_lines", rec.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// MarkValidated fija el estado terminal, validated_by y validation_date.
func (r *ReceiptRepo) MarkValidated(id, status, validatedBy string, at time.Time) error {
	return markValidated(r.q, "receipts", id, status, validatedBy, at)
}

// UpdateStatus cambia el estado (cancelación).
func (r *ReceiptRepo) UpdateStatus(id, status string) error {
	return updateStatus(r.q, "receipts", id, status)
}

// Delete elimina la recepción y sus líneas.
func (r *ReceiptRepo) Delete(id string) error {
	return deleteDocument(r.q, "receipts", id)
}

// MaxDocumentNumber devuelve el mayor document_number numérico (0 si no hay).
func (r *ReceiptRepo) MaxDocumentNumber() (int64, error) {
	return maxDocumentNumber(r.q, "receipts")
}
