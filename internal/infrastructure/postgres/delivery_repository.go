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

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

// DeliveryRepo implementación de DeliveryRepository sobre PostgreSQL
// (usable con pool o tx).
type DeliveryRepo struct {
	q Querier
}

// NewDeliveryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

// Create persiste la cabecera y las líneas. Devuelve ErrDuplicate si el
// document_number ya existe.
func (r *DeliveryRepo) Create(delivery *entity.Delivery) error {
	query := `
		INSERT INTO deliveries (id, document_number, status, customer_name, warehouse_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		delivery.ID, delivery.DocumentNumber, delivery.Status, delivery.CustomerName,
		delivery.WarehouseID, delivery.CreatedBy, delivery.CreatedAt, delivery.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert delivery: %w", err)
	}
	return insertLines(r.q, "delivery_lines", delivery.ID, delivery.Lines)
}

// GetByID obtiene una entrega con sus líneas. Devuelve ErrNotFound si no existe.
func (r *DeliveryRepo) GetByID(id string) (*entity.Delivery, error) {
	query := `
		SELECT id, document_number, status, customer_name, warehouse_id,
			created_by, validated_by, validation_date, created_at, updated_at
		FROM deliveries WHERE id = $1`
	var d entity.Delivery
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&d.ID, &d.DocumentNumber, &d.Status, &d.CustomerName, &d.WarehouseID,
		&d.CreatedBy, &d.ValidatedBy, &d.ValidationDate, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	if d.Lines, err = loadLines(r.q, "delivery_lines", d.ID); err != nil {
		return nil, err
	}
	return &d, nil
}

// List lista entregas (cabecera + líneas) ordenadas por creación descendente.
func (r *DeliveryRepo) List(limit, offset int) ([]*entity.Delivery, error) {
	query := `
		SELECT id, document_number, status, customer_name, warehouse_id,
			created_by, validated_by, validation_date, created_at, updated_at
		FROM deliveries ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list deliveries: %w", err)
	}
	defer rows.Close()
	var list []*entity.Delivery
	for rows.Next() {
		var d entity.Delivery
		if err := rows.Scan(&d.ID, &d.DocumentNumber, &d.Status, &d.CustomerName, &d.WarehouseID,
			&d.CreatedBy, &d.ValidatedBy, &d.ValidationDate, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		list = append(list, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, d := range list {
		if d.Lines, err = loadLines(r.q, "delivery_lines", d.ID); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// MarkValidated fija el estado terminal, validated_by y validation_date.
func (r *DeliveryRepo) MarkValidated(id, status, validatedBy string, at time.Time) error {
	return markValidated(r.q, "deliveries", id, status, validatedBy, at)
}

// UpdateStatus cambia el estado (cancelación).
func (r *DeliveryRepo) UpdateStatus(id, status string) error {
	return updateStatus(r.q, "deliveries", id, status)
}

// Delete elimina la entrega y sus líneas.
func (r *DeliveryRepo) Delete(id string) error {
	return deleteDocument(r.q, "deliveries", id)
}

// MaxDocumentNumber devuelve el mayor document_number numérico (0 si no hay).
func (r *DeliveryRepo) MaxDocumentNumber() (int64, error) {
	return maxDocumentNumber(r.q, "deliveries")
}
