package ledger

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción de BD.
type Repos struct {
	Receipts    repository.ReceiptRepository
	Deliveries  repository.DeliveryRepository
	Transfers   repository.TransferRepository
	Adjustments repository.AdjustmentRepository
	Inventory   repository.InventoryRepository
	Products    repository.ProductRepository
	Moves       repository.MoveHistoryRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor:
// verificación y aplicación de efectos ocurren bajo los mismos bloqueos
// de fila, y todo hace Commit o Rollback como unidad.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// SnapshotInvalidator invalida el cache de snapshots de stock después de
// un commit que cambió inventario. Fallo aquí no revierte nada: el cache
// expira solo por TTL.
type SnapshotInvalidator interface {
	InvalidateStock(ctx context.Context)
}

// DocumentPDFGenerator genera la representación PDF de un documento para
// descarga. Colaborador de salida, fire-and-forget desde el motor.
type DocumentPDFGenerator interface {
	GenerateDocumentPDF(ctx context.Context, doc entity.MovementDocument, warehouses map[string]*entity.Warehouse, products map[string]*entity.Product) ([]byte, error)
}
