package ledger

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// CreateDocumentUseCase crea documentos de movimiento en estado pending.
// Crear no tiene efecto sobre inventario, con una excepción: la creación
// de un Delivery reserva stock (Reserved += q, Available -= q) dentro de
// una transacción, para que dos deliveries concurrentes no puedan
// comprometer la misma unidad.
//
// Numeración: si el cliente no envía document_number se asigna
// max(números existentes) + 1 por tipo. Una colisión de unicidad al
// insertar reintenta una vez con el número reconsultado (la transacción
// completa se repite: tras un error PostgreSQL aborta la tx en curso).
type CreateDocumentUseCase struct {
	tx          TxRunner
	products    repository.ProductRepository
	warehouses  repository.WarehouseRepository
	invalidator SnapshotInvalidator // opcional; la reserva cambia el disponible
	log         *logger.Logger
}

// NewCreateDocumentUseCase construye el caso de uso.
func NewCreateDocumentUseCase(
	tx TxRunner,
	products repository.ProductRepository,
	warehouses repository.WarehouseRepository,
	invalidator SnapshotInvalidator,
	log *logger.Logger,
) *CreateDocumentUseCase {
	return &CreateDocumentUseCase{tx: tx, products: products, warehouses: warehouses, invalidator: invalidator, log: log}
}

// CreateReceipt crea una entrada de proveedor en pending.
func (uc *CreateDocumentUseCase) CreateReceipt(ctx context.Context, actorID string, in dto.CreateReceiptRequest) (*entity.Receipt, error) {
	lines, err := uc.toLines(in.Lines)
	if err != nil {
		return nil, err
	}
	if err := uc.checkWarehouse(in.WarehouseID); err != nil {
		return nil, err
	}

	receipt := &entity.Receipt{
		DocumentHeader: newHeader(in.DocumentNumber, actorID, lines),
		SupplierName:   in.SupplierName,
		WarehouseID:    in.WarehouseID,
	}
	err = uc.createNumbered(ctx, in.DocumentNumber, func(r Repos) (numbered, error) {
		return numbered{max: r.Receipts.MaxDocumentNumber, insert: func(num string) error {
			receipt.DocumentNumber = num
			return r.Receipts.Create(receipt)
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("document_number", receipt.DocumentNumber).Str("warehouse_id", in.WarehouseID).Msg("receipt creado")
	return receipt, nil
}

// CreateDelivery crea una salida a cliente en pending y reserva el stock
// de cada línea. Si alguna línea excede el disponible la operación
// completa falla con InsufficientStock y ninguna reserva queda aplicada.
func (uc *CreateDocumentUseCase) CreateDelivery(ctx context.Context, actorID string, in dto.CreateDeliveryRequest) (*entity.Delivery, error) {
	lines, err := uc.toLines(in.Lines)
	if err != nil {
		return nil, err
	}
	if err := uc.checkWarehouse(in.WarehouseID); err != nil {
		return nil, err
	}

	delivery := &entity.Delivery{
		DocumentHeader: newHeader(in.DocumentNumber, actorID, lines),
		CustomerName:   in.CustomerName,
		WarehouseID:    in.WarehouseID,
	}
	now := delivery.CreatedAt

	err = uc.createNumbered(ctx, in.DocumentNumber, func(r Repos) (numbered, error) {
		// Reservar línea por línea con la fila bloqueada
		for _, line := range lines {
			rec, err := r.Inventory.GetForUpdate(line.ProductID, in.WarehouseID, nil)
			if err != nil {
				return numbered{}, err
			}
			if err := rec.ApplyDelta(0, line.Quantity); err != nil {
				return numbered{}, &domain.StockError{
					ProductID:   line.ProductID,
					WarehouseID: in.WarehouseID,
					Requested:   line.Quantity,
					Available:   rec.Available,
					Err:         domain.ErrInsufficientStock,
				}
			}
			rec.UpdatedAt = now
			if err := r.Inventory.Upsert(rec); err != nil {
				return numbered{}, err
			}
		}
		return numbered{max: r.Deliveries.MaxDocumentNumber, insert: func(num string) error {
			delivery.DocumentNumber = num
			return r.Deliveries.Create(delivery)
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("document_number", delivery.DocumentNumber).Str("warehouse_id", in.WarehouseID).Msg("delivery creado con stock reservado")
	if uc.invalidator != nil {
		uc.invalidator.InvalidateStock(ctx)
	}
	return delivery, nil
}

// CreateTransfer crea un traslado entre bodegas en pending.
func (uc *CreateDocumentUseCase) CreateTransfer(ctx context.Context, actorID string, in dto.CreateTransferRequest) (*entity.InternalTransfer, error) {
	lines, err := uc.toLines(in.Lines)
	if err != nil {
		return nil, err
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkWarehouse(in.FromWarehouseID); err != nil {
		return nil, err
	}
	if err := uc.checkWarehouse(in.ToWarehouseID); err != nil {
		return nil, err
	}

	transfer := &entity.InternalTransfer{
		DocumentHeader:  newHeader(in.DocumentNumber, actorID, lines),
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
	}
	err = uc.createNumbered(ctx, in.DocumentNumber, func(r Repos) (numbered, error) {
		return numbered{max: r.Transfers.MaxDocumentNumber, insert: func(num string) error {
			transfer.DocumentNumber = num
			return r.Transfers.Create(transfer)
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("document_number", transfer.DocumentNumber).Msg("traslado creado")
	return transfer, nil
}

// CreateAdjustment crea un ajuste manual en pending.
func (uc *CreateDocumentUseCase) CreateAdjustment(ctx context.Context, actorID string, in dto.CreateAdjustmentRequest) (*entity.StockAdjustment, error) {
	lines, err := uc.toLines(in.Lines)
	if err != nil {
		return nil, err
	}
	if in.Type != entity.AdjustmentIn && in.Type != entity.AdjustmentOut {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkWarehouse(in.WarehouseID); err != nil {
		return nil, err
	}

	adjustment := &entity.StockAdjustment{
		DocumentHeader: newHeader(in.DocumentNumber, actorID, lines),
		WarehouseID:    in.WarehouseID,
		Type:           in.Type,
	}
	err = uc.createNumbered(ctx, in.DocumentNumber, func(r Repos) (numbered, error) {
		return numbered{max: r.Adjustments.MaxDocumentNumber, insert: func(num string) error {
			adjustment.DocumentNumber = num
			return r.Adjustments.Create(adjustment)
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("document_number", adjustment.DocumentNumber).Str("type", in.Type).Msg("ajuste creado")
	return adjustment, nil
}

// numbered encapsula la consulta del máximo y la inserción con número.
type numbered struct {
	max    func() (int64, error)
	insert func(num string) error
}

// createNumbered ejecuta la creación en transacción. Con número del
// usuario: un solo intento, Duplicate se propaga. Con autonumeración:
// una colisión repite la transacción completa con el número reconsultado.
func (uc *CreateDocumentUseCase) createNumbered(ctx context.Context, userNumber string, prepare func(r Repos) (numbered, error)) error {
	attempt := func() error {
		return uc.tx.Run(ctx, func(r Repos) error {
			n, err := prepare(r)
			if err != nil {
				return err
			}
			num := userNumber
			if num == "" {
				last, err := n.max()
				if err != nil {
					return err
				}
				num = strconv.FormatInt(last+1, 10)
			}
			return n.insert(num)
		})
	}

	err := attempt()
	if errors.Is(err, domain.ErrDuplicate) && userNumber == "" {
		uc.log.Warn().Msg("colisión de numeración automática, reintentando")
		err = attempt()
	}
	return err
}

func newHeader(documentNumber, actorID string, lines []entity.DocumentLine) entity.DocumentHeader {
	now := time.Now()
	return entity.DocumentHeader{
		ID:             uuid.New().String(),
		DocumentNumber: documentNumber,
		Status:         entity.StatusPending,
		Lines:          lines,
		CreatedBy:      actorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// toLines valida y convierte las líneas del request. Cantidades deben ser
// positivas y los productos existir.
func (uc *CreateDocumentUseCase) toLines(in []dto.DocumentLineRequest) ([]entity.DocumentLine, error) {
	if len(in) == 0 {
		return nil, domain.ErrInvalidInput
	}
	lines := make([]entity.DocumentLine, 0, len(in))
	for _, l := range in {
		if l.ProductID == "" || l.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		if _, err := uc.products.GetByID(l.ProductID); err != nil {
			return nil, err
		}
		lines = append(lines, entity.DocumentLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Reason:    l.Reason,
		})
	}
	return lines, nil
}

func (uc *CreateDocumentUseCase) checkWarehouse(id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	_, err := uc.warehouses.GetByID(id)
	return err
}
