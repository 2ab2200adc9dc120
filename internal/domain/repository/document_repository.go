package repository

import (
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Puertos de persistencia por tipo de documento. Comparten forma pero se
// mantienen separados: cada tipo tiene su tabla, sus líneas y su constraint
// de unicidad sobre document_number.
//
// MaxDocumentNumber devuelve el mayor document_number numérico del tipo
// (0 si no hay ninguno); lo usa la numeración automática max+1.
// MarkValidated fija el estado terminal, validated_by y validation_date.

type ReceiptRepository interface {
	Create(receipt *entity.Receipt) error
	GetByID(id string) (*entity.Receipt, error)
	List(limit, offset int) ([]*entity.Receipt, error)
	MarkValidated(id, status, validatedBy string, at time.Time) error
	UpdateStatus(id, status string) error
	Delete(id string) error
	MaxDocumentNumber() (int64, error)
}

type DeliveryRepository interface {
	Create(delivery *entity.Delivery) error
	GetByID(id string) (*entity.Delivery, error)
	List(limit, offset int) ([]*entity.Delivery, error)
	MarkValidated(id, status, validatedBy string, at time.Time) error
	UpdateStatus(id, status string) error
	Delete(id string) error
	MaxDocumentNumber() (int64, error)
}

type TransferRepository interface {
	Create(transfer *entity.InternalTransfer) error
	GetByID(id string) (*entity.InternalTransfer, error)
	List(limit, offset int) ([]*entity.InternalTransfer, error)
	MarkValidated(id, status, validatedBy string, at time.Time) error
	UpdateStatus(id, status string) error
	Delete(id string) error
	MaxDocumentNumber() (int64, error)
}

type AdjustmentRepository interface {
	Create(adjustment *entity.StockAdjustment) error
	GetByID(id string) (*entity.StockAdjustment, error)
	List(limit, offset int) ([]*entity.StockAdjustment, error)
	MarkValidated(id, status, validatedBy string, at time.Time) error
	UpdateStatus(id, status string) error
	Delete(id string) error
	MaxDocumentNumber() (int64, error)
}
