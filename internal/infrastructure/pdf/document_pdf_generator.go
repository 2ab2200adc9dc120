// Package pdf implementa la representación imprimible de los documentos
// de movimiento (recepciones, entregas, traslados y ajustes).
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del documento  │  N° + Fecha + Estado       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  PARTES: proveedor/cliente + bodega(s)                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | SKU | P.Unit / Motivo             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: creado por / validado por + fecha de validación    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// Títulos por tipo de documento.
var docTitles = map[entity.DocumentType]string{
	entity.DocumentReceipt:    "RECEPCIÓN DE MERCANCÍA",
	entity.DocumentDelivery:   "ENTREGA A CLIENTE",
	entity.DocumentTransfer:   "TRASLADO ENTRE BODEGAS",
	entity.DocumentAdjustment: "AJUSTE DE INVENTARIO",
}

var _ ledger.DocumentPDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa ledger.DocumentPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateDocumentPDF genera el PDF y devuelve sus bytes. warehouses y
// products resuelven los IDs del documento a nombres legibles.
func (g *MarotoPDFGenerator) GenerateDocumentPDF(
	_ context.Context,
	doc entity.MovementDocument,
	warehouses map[string]*entity.Warehouse,
	products map[string]*entity.Product,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(docTitles[doc.DocType()], true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(doc, warehouses))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(doc.DocType()))
	for _, r := range tableLineRows(doc, products) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(doc))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título (izq) y número + fecha + estado (der).
func headerRow(doc entity.MovementDocument) core.Row {
	head := doc.Head()
	return row.New(18).Add(
		col.New(7).Add(
			text.New(docTitles[doc.DocType()], props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(5).Add(
			text.New("N° "+head.DocumentNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Fecha: "+head.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New("Estado: "+head.Status, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

// partiesRow: contraparte y bodega(s) según el tipo de documento.
func partiesRow(doc entity.MovementDocument, warehouses map[string]*entity.Warehouse) core.Row {
	var detail string
	switch d := doc.(type) {
	case *entity.Receipt:
		detail = fmt.Sprintf("Proveedor: %s   |   Bodega destino: %s",
			nonEmpty(d.SupplierName, "—"), warehouseName(warehouses, d.WarehouseID))
	case *entity.Delivery:
		detail = fmt.Sprintf("Cliente: %s   |   Bodega origen: %s",
			nonEmpty(d.CustomerName, "—"), warehouseName(warehouses, d.WarehouseID))
	case *entity.InternalTransfer:
		detail = fmt.Sprintf("Bodega origen: %s   |   Bodega destino: %s",
			warehouseName(warehouses, d.FromWarehouseID), warehouseName(warehouses, d.ToWarehouseID))
	case *entity.StockAdjustment:
		direction := "Entrada"
		if d.Type == entity.AdjustmentOut {
			direction = "Salida"
		}
		detail = fmt.Sprintf("Tipo: %s   |   Bodega: %s",
			direction, warehouseName(warehouses, d.WarehouseID))
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL DOCUMENTO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(detail, props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas. La última columna es
// precio unitario en recepciones/entregas y motivo en ajustes/traslados.
func tableHeaderRow(docType entity.DocumentType) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	last := "Precio Unit."
	if docType == entity.DocumentAdjustment || docType == entity.DocumentTransfer {
		last = "Motivo"
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 6, align.Left),
		h("SKU", 2, align.Left),
		h(last, 3, align.Right),
	)
}

// tableLineRows: una fila por línea del documento.
func tableLineRows(doc entity.MovementDocument, products map[string]*entity.Product) []core.Row {
	head := doc.Head()
	priced := doc.DocType() == entity.DocumentReceipt || doc.DocType() == entity.DocumentDelivery
	result := make([]core.Row, 0, len(head.Lines))
	for _, l := range head.Lines {
		name, sku := l.ProductID, "—"
		if p, ok := products[l.ProductID]; ok {
			name, sku = p.Name, p.SKU
		}
		last := nonEmpty(l.Reason, "—")
		if priced {
			last = "$" + l.UnitPrice.StringFixed(2)
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", l.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				name,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				sku,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				last,
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// footerRow: trazabilidad de creación y validación.
func footerRow(doc entity.MovementDocument) core.Row {
	head := doc.Head()
	validated := "Pendiente de validación"
	if head.ValidatedBy != nil && head.ValidationDate != nil {
		validated = fmt.Sprintf("Validado por %s el %s",
			*head.ValidatedBy, head.ValidationDate.Format("02/01/2006 15:04"))
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("Creado por: "+head.CreatedBy, props.Text{
				Size: 8, Top: 2, Color: colorGray,
			}),
			text.New(validated, props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func warehouseName(warehouses map[string]*entity.Warehouse, id string) string {
	if w, ok := warehouses[id]; ok {
		return w.Name
	}
	return id
}
