package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// DocumentLifecycleUseCase maneja cancelación y eliminación de documentos.
//
// Cancelar solo aplica a documentos pending; en un Delivery libera la
// reserva tomada en la creación (Reserved -= q, Available += q).
// Eliminar un documento validado está prohibido: su efecto sobre
// inventario ya se aplicó y borrarlo dejaría el libro sin respaldo.
type DocumentLifecycleUseCase struct {
	tx          TxRunner
	invalidator SnapshotInvalidator
	log         *logger.Logger
}

// NewDocumentLifecycleUseCase construye el caso de uso.
func NewDocumentLifecycleUseCase(tx TxRunner, invalidator SnapshotInvalidator, log *logger.Logger) *DocumentLifecycleUseCase {
	return &DocumentLifecycleUseCase{tx: tx, invalidator: invalidator, log: log}
}

// Cancel transiciona un documento pending a cancelled.
func (uc *DocumentLifecycleUseCase) Cancel(ctx context.Context, docType entity.DocumentType, id string) error {
	released := false
	err := uc.tx.Run(ctx, func(r Repos) error {
		h, err := loadDoc(r, docType, id)
		if err != nil {
			return err
		}
		if !h.doc.Head().IsPending() {
			return domain.ErrAlreadyProcessed
		}
		if delivery, ok := h.doc.(*entity.Delivery); ok {
			if err := releaseReservation(r, delivery); err != nil {
				return err
			}
			released = true
		}
		return h.updateStatus(entity.StatusCancelled)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("document_type", string(docType)).Str("document_id", id).Msg("documento cancelado")
	if released && uc.invalidator != nil {
		uc.invalidator.InvalidateStock(ctx)
	}
	return nil
}

// Delete elimina un documento. Documentos validados no se eliminan
// (ErrDocumentValidated); un Delivery pending libera su reserva antes
// de borrarse; un documento cancelled se borra sin más efecto.
func (uc *DocumentLifecycleUseCase) Delete(ctx context.Context, docType entity.DocumentType, id string) error {
	released := false
	err := uc.tx.Run(ctx, func(r Repos) error {
		h, err := loadDoc(r, docType, id)
		if err != nil {
			return err
		}
		status := h.doc.Head().Status
		if status != entity.StatusPending && status != entity.StatusCancelled {
			return domain.ErrDocumentValidated
		}
		if delivery, ok := h.doc.(*entity.Delivery); ok && status == entity.StatusPending {
			if err := releaseReservation(r, delivery); err != nil {
				return err
			}
			released = true
		}
		return h.remove()
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("document_type", string(docType)).Str("document_id", id).Msg("documento eliminado")
	if released && uc.invalidator != nil {
		uc.invalidator.InvalidateStock(ctx)
	}
	return nil
}

// releaseReservation devuelve al disponible lo reservado por cada línea.
func releaseReservation(r Repos, delivery *entity.Delivery) error {
	now := time.Now()
	for _, line := range delivery.Lines {
		rec, err := r.Inventory.GetForUpdate(line.ProductID, delivery.WarehouseID, nil)
		if err != nil {
			return err
		}
		if err := rec.ApplyDelta(0, -line.Quantity); err != nil {
			return &domain.StockError{
				ProductID:   line.ProductID,
				WarehouseID: delivery.WarehouseID,
				Requested:   line.Quantity,
				Available:   rec.Available,
				Err:         domain.ErrInvariantViolation,
			}
		}
		rec.UpdatedAt = now
		if err := r.Inventory.Upsert(rec); err != nil {
			return err
		}
	}
	return nil
}
