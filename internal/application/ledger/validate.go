package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// ValidateDocumentUseCase ejecuta la validación de documentos: la
// transición única de pending al estado terminal que aplica el efecto
// del documento sobre inventario y catálogo exactamente una vez.
//
// Protocolo en cuatro fases, todo dentro de una transacción:
//  1. Cargar y guardar: NotFound si no existe, AlreadyProcessed si el
//     estado no es pending.
//  2. Verificación en seco: cada línea se aplica sobre copias de los
//     registros bloqueados; si alguna viola un invariante el documento
//     completo se rechaza sin efectos, reportando producto, bodega y
//     faltante.
//  3. Aplicar: en orden de línea, mutar InventoryRecord, sincronizar
//     Product.Quantity y registrar la entrada de historial.
//  4. Commit de la transición: estado terminal, validated_by y
//     validation_date.
//
// Los registros afectados se bloquean con SELECT FOR UPDATE en orden de
// clave estable antes de la fase 2, de modo que dos validaciones
// concurrentes sobre el mismo registro se serializan y nunca hay
// sobregiro ni registro a medio mutar.
type ValidateDocumentUseCase struct {
	tx          TxRunner
	invalidator SnapshotInvalidator // opcional
	log         *logger.Logger
}

// NewValidateDocumentUseCase construye el caso de uso. invalidator puede
// ser nil si no hay cache configurado.
func NewValidateDocumentUseCase(tx TxRunner, invalidator SnapshotInvalidator, log *logger.Logger) *ValidateDocumentUseCase {
	return &ValidateDocumentUseCase{tx: tx, invalidator: invalidator, log: log}
}

// docHandle adapta un documento concreto y su repositorio al motor.
type docHandle struct {
	doc           entity.MovementDocument
	markValidated func(status, validatedBy string, at time.Time) error
	updateStatus  func(status string) error
	remove        func() error
}

// loadDoc resuelve el documento por tipo dentro de la transacción.
func loadDoc(r Repos, docType entity.DocumentType, id string) (*docHandle, error) {
	switch docType {
	case entity.DocumentReceipt:
		doc, err := r.Receipts.GetByID(id)
		if err != nil {
			return nil, err
		}
		return &docHandle{
			doc: doc,
			markValidated: func(status, by string, at time.Time) error {
				return r.Receipts.MarkValidated(id, status, by, at)
			},
			updateStatus: func(status string) error { return r.Receipts.UpdateStatus(id, status) },
			remove:       func() error { return r.Receipts.Delete(id) },
		}, nil
	case entity.DocumentDelivery:
		doc, err := r.Deliveries.GetByID(id)
		if err != nil {
			return nil, err
		}
		return &docHandle{
			doc: doc,
			markValidated: func(status, by string, at time.Time) error {
				return r.Deliveries.MarkValidated(id, status, by, at)
			},
			updateStatus: func(status string) error { return r.Deliveries.UpdateStatus(id, status) },
			remove:       func() error { return r.Deliveries.Delete(id) },
		}, nil
	case entity.DocumentTransfer:
		doc, err := r.Transfers.GetByID(id)
		if err != nil {
			return nil, err
		}
		return &docHandle{
			doc: doc,
			markValidated: func(status, by string, at time.Time) error {
				return r.Transfers.MarkValidated(id, status, by, at)
			},
			updateStatus: func(status string) error { return r.Transfers.UpdateStatus(id, status) },
			remove:       func() error { return r.Transfers.Delete(id) },
		}, nil
	case entity.DocumentAdjustment:
		doc, err := r.Adjustments.GetByID(id)
		if err != nil {
			return nil, err
		}
		return &docHandle{
			doc: doc,
			markValidated: func(status, by string, at time.Time) error {
				return r.Adjustments.MarkValidated(id, status, by, at)
			},
			updateStatus: func(status string) error { return r.Adjustments.UpdateStatus(id, status) },
			remove:       func() error { return r.Adjustments.Delete(id) },
		}, nil
	}
	return nil, domain.ErrInvalidInput
}

// Validate aplica el protocolo de cuatro fases sobre el documento.
func (uc *ValidateDocumentUseCase) Validate(ctx context.Context, docType entity.DocumentType, id, actorID string) error {
	if id == "" || actorID == "" {
		return domain.ErrInvalidInput
	}
	now := time.Now()

	err := uc.tx.Run(ctx, func(r Repos) error {
		// Fase 1: cargar y guardar
		h, err := loadDoc(r, docType, id)
		if err != nil {
			return err
		}
		head := h.doc.Head()
		if !head.IsPending() {
			return domain.ErrAlreadyProcessed
		}

		plans, err := buildPlan(h.doc)
		if err != nil {
			return err
		}

		// Bloquear registros afectados en orden de clave estable
		locked := make(map[recordKey]*entity.InventoryRecord)
		for _, key := range planKeys(plans) {
			rec, err := r.Inventory.GetForUpdate(key.ProductID, key.WarehouseID, key.locationPtr())
			if err != nil {
				return err
			}
			locked[key] = rec
		}

		// Fase 2: verificación en seco sobre copias
		scratch := make(map[recordKey]*entity.InventoryRecord, len(locked))
		for key, rec := range locked {
			scratch[key] = rec.Clone()
		}
		for _, p := range plans {
			for _, ef := range p.Effects {
				rec := scratch[ef.Key]
				if err := rec.ApplyDelta(ef.OnHandDelta, ef.ReservedDelta); err != nil {
					sentinel := domain.ErrInvariantViolation
					if ef.OnHandDelta < 0 {
						sentinel = domain.ErrInsufficientStock
					}
					return stockErr(ef, rec.Available, sentinel)
				}
			}
		}

		// Fase 3: aplicar en orden de línea
		for _, p := range plans {
			for _, ef := range p.Effects {
				rec := locked[ef.Key]
				if err := rec.ApplyDelta(ef.OnHandDelta, ef.ReservedDelta); err != nil {
					// imposible tras la fase 2; se trata como fatal
					return stockErr(ef, rec.Available, err)
				}
				rec.UpdatedAt = now
				if err := r.Inventory.Upsert(rec); err != nil {
					return err
				}
			}
			if p.ProductDelta != 0 {
				if err := r.Products.AddQuantity(p.ProductID, p.ProductDelta); err != nil {
					return err
				}
			}
			move := p.Move
			move.MovedBy = actorID
			move.MovedAt = now
			if err := r.Moves.Create(&move); err != nil {
				return err
			}
		}

		// Fase 4: transición terminal
		return h.markValidated(h.doc.TerminalStatus(), actorID, now)
	})
	if err != nil {
		return err
	}

	uc.log.Info().
		Str("document_type", string(docType)).
		Str("document_id", id).
		Str("validated_by", actorID).
		Msg("documento validado")

	if uc.invalidator != nil {
		uc.invalidator.InvalidateStock(ctx)
	}
	return nil
}
