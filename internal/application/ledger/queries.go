package ledger

import (
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// DocumentQueryUseCase lecturas de documentos (lista y detalle), fuera de
// transacción.
type DocumentQueryUseCase struct {
	receipts    repository.ReceiptRepository
	deliveries  repository.DeliveryRepository
	transfers   repository.TransferRepository
	adjustments repository.AdjustmentRepository
}

// NewDocumentQueryUseCase construye el caso de uso con repos atados al pool.
func NewDocumentQueryUseCase(
	receipts repository.ReceiptRepository,
	deliveries repository.DeliveryRepository,
	transfers repository.TransferRepository,
	adjustments repository.AdjustmentRepository,
) *DocumentQueryUseCase {
	return &DocumentQueryUseCase{receipts: receipts, deliveries: deliveries, transfers: transfers, adjustments: adjustments}
}

// Get devuelve el detalle de un documento.
func (uc *DocumentQueryUseCase) Get(docType entity.DocumentType, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.fetch(docType, id)
	if err != nil {
		return nil, err
	}
	resp := ToDocumentResponse(doc)
	return &resp, nil
}

// List devuelve documentos de un tipo con paginación.
func (uc *DocumentQueryUseCase) List(docType entity.DocumentType, limit, offset int) (*dto.DocumentListResponse, error) {
	var docs []entity.MovementDocument
	switch docType {
	case entity.DocumentReceipt:
		list, err := uc.receipts.List(limit, offset)
		if err != nil {
			return nil, err
		}
		for _, d := range list {
			docs = append(docs, d)
		}
	case entity.DocumentDelivery:
		list, err := uc.deliveries.List(limit, offset)
		if err != nil {
			return nil, err
		}
		for _, d := range list {
			docs = append(docs, d)
		}
	case entity.DocumentTransfer:
		list, err := uc.transfers.List(limit, offset)
		if err != nil {
			return nil, err
		}
		for _, d := range list {
			docs = append(docs, d)
		}
	case entity.DocumentAdjustment:
		list, err := uc.adjustments.List(limit, offset)
		if err != nil {
			return nil, err
		}
		for _, d := range list {
			docs = append(docs, d)
		}
	default:
		return nil, domain.ErrInvalidInput
	}

	items := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, ToDocumentResponse(d))
	}
	return &dto.DocumentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Fetch devuelve la entidad cruda (para PDF).
func (uc *DocumentQueryUseCase) Fetch(docType entity.DocumentType, id string) (entity.MovementDocument, error) {
	return uc.fetch(docType, id)
}

func (uc *DocumentQueryUseCase) fetch(docType entity.DocumentType, id string) (entity.MovementDocument, error) {
	switch docType {
	case entity.DocumentReceipt:
		doc, err := uc.receipts.GetByID(id)
		if err != nil {
			return nil, err
		}
		return doc, nil
	case entity.DocumentDelivery:
		doc, err := uc.deliveries.GetByID(id)
		if err != nil {
			return nil, err
		}
		return doc, nil
	case entity.DocumentTransfer:
		doc, err := uc.transfers.GetByID(id)
		if err != nil {
			return nil, err
		}
		return doc, nil
	case entity.DocumentAdjustment:
		doc, err := uc.adjustments.GetByID(id)
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
	return nil, domain.ErrInvalidInput
}

// ToDocumentResponse mapea cualquier variante al DTO común.
func ToDocumentResponse(doc entity.MovementDocument) dto.DocumentResponse {
	head := doc.Head()
	resp := dto.DocumentResponse{
		ID:             head.ID,
		Type:           string(doc.DocType()),
		DocumentNumber: head.DocumentNumber,
		Status:         head.Status,
		CreatedBy:      head.CreatedBy,
		ValidatedBy:    head.ValidatedBy,
		ValidationDate: head.ValidationDate,
		CreatedAt:      head.CreatedAt,
	}
	resp.Lines = make([]dto.DocumentLineResponse, 0, len(head.Lines))
	for _, l := range head.Lines {
		resp.Lines = append(resp.Lines, dto.DocumentLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Reason:    l.Reason,
		})
	}
	switch d := doc.(type) {
	case *entity.Receipt:
		resp.SupplierName = d.SupplierName
		resp.WarehouseID = d.WarehouseID
	case *entity.Delivery:
		resp.CustomerName = d.CustomerName
		resp.WarehouseID = d.WarehouseID
	case *entity.InternalTransfer:
		resp.FromWarehouseID = d.FromWarehouseID
		resp.ToWarehouseID = d.ToWarehouseID
	case *entity.StockAdjustment:
		resp.WarehouseID = d.WarehouseID
		resp.AdjustmentType = d.Type
	}
	return resp
}
