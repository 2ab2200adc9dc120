package ledger

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// DocumentPDFUseCase genera el PDF de un documento para descarga.
type DocumentPDFUseCase struct {
	queries    *DocumentQueryUseCase
	warehouses repository.WarehouseRepository
	products   repository.ProductRepository
	generator  DocumentPDFGenerator
}

// NewDocumentPDFUseCase construye el caso de uso.
func NewDocumentPDFUseCase(
	queries *DocumentQueryUseCase,
	warehouses repository.WarehouseRepository,
	products repository.ProductRepository,
	generator DocumentPDFGenerator,
) *DocumentPDFUseCase {
	return &DocumentPDFUseCase{queries: queries, warehouses: warehouses, products: products, generator: generator}
}

// Generate resuelve el documento con sus referencias y genera el PDF.
func (uc *DocumentPDFUseCase) Generate(ctx context.Context, docType entity.DocumentType, id string) ([]byte, string, error) {
	doc, err := uc.queries.Fetch(docType, id)
	if err != nil {
		return nil, "", err
	}

	warehouses := make(map[string]*entity.Warehouse)
	for _, whID := range documentWarehouses(doc) {
		wh, err := uc.warehouses.GetByID(whID)
		if err != nil {
			return nil, "", err
		}
		if wh != nil {
			warehouses[whID] = wh
		}
	}

	products := make(map[string]*entity.Product)
	for _, line := range doc.Head().Lines {
		if _, ok := products[line.ProductID]; ok {
			continue
		}
		p, err := uc.products.GetByID(line.ProductID)
		if err != nil {
			return nil, "", err
		}
		if p == nil {
			return nil, "", domain.ErrNotFound
		}
		products[line.ProductID] = p
	}

	pdf, err := uc.generator.GenerateDocumentPDF(ctx, doc, warehouses, products)
	if err != nil {
		return nil, "", err
	}
	filename := string(doc.DocType()) + "-" + doc.Head().DocumentNumber + ".pdf"
	return pdf, filename, nil
}

func documentWarehouses(doc entity.MovementDocument) []string {
	switch d := doc.(type) {
	case *entity.Receipt:
		return []string{d.WarehouseID}
	case *entity.Delivery:
		return []string{d.WarehouseID}
	case *entity.InternalTransfer:
		return []string{d.FromWarehouseID, d.ToWarehouseID}
	case *entity.StockAdjustment:
		return []string{d.WarehouseID}
	}
	return nil
}
