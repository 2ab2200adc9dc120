package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento de movimiento.
type DocumentType string

const (
	DocumentReceipt    DocumentType = "receipt"    // entrada de proveedor
	DocumentDelivery   DocumentType = "delivery"   // salida a cliente
	DocumentTransfer   DocumentType = "transfer"   // traslado entre bodegas
	DocumentAdjustment DocumentType = "adjustment" // ajuste manual
)

// Estados del ciclo de vida. Todo documento nace en pending y transiciona
// exactamente una vez a su estado terminal vía validación, o a cancelled.
const (
	StatusPending   = "pending"
	StatusReceived  = "received"  // terminal de Receipt
	StatusDelivered = "delivered" // terminal de Delivery
	StatusCompleted = "completed" // terminal de Transfer y Adjustment
	StatusCancelled = "cancelled"
)

// Tipos de ajuste de stock.
const (
	AdjustmentIn  = "in"
	AdjustmentOut = "out"
)

// DocumentLine es una línea de documento. La cantidad siempre es positiva;
// el signo del efecto lo decide el tipo de documento.
type DocumentLine struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal // 0 en traslados y ajustes
	Reason    string          // solo ajustes
}

// DocumentHeader agrupa los campos comunes a todos los documentos.
type DocumentHeader struct {
	ID             string
	DocumentNumber string
	Status         string
	Lines          []DocumentLine
	CreatedBy      string
	ValidatedBy    *string
	ValidationDate *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsPending indica si el documento aún no tiene efecto sobre inventario
// aplicado (la reserva de un Delivery es aparte, ocurre en la creación).
func (h *DocumentHeader) IsPending() bool { return h.Status == StatusPending }

// MovementDocument es la unión etiquetada sobre los cuatro tipos de
// documento. El motor de validación trabaja contra esta interfaz y un
// type switch por variante.
type MovementDocument interface {
	DocType() DocumentType
	Head() *DocumentHeader
	TerminalStatus() string
}

// Receipt es una entrada de mercancía de un proveedor hacia una bodega.
type Receipt struct {
	DocumentHeader
	SupplierName string
	WarehouseID  string
}

func (r *Receipt) DocType() DocumentType  { return DocumentReceipt }
func (r *Receipt) Head() *DocumentHeader  { return &r.DocumentHeader }
func (r *Receipt) TerminalStatus() string { return StatusReceived }

// Delivery es una salida de mercancía hacia un cliente. Es el único
// documento con efecto en dos fases: la creación reserva (Reserved += q,
// Available -= q) y la validación consuma la reserva (OnHand -= q,
// Reserved -= q).
type Delivery struct {
	DocumentHeader
	CustomerName string
	WarehouseID  string
}

func (d *Delivery) DocType() DocumentType  { return DocumentDelivery }
func (d *Delivery) Head() *DocumentHeader  { return &d.DocumentHeader }
func (d *Delivery) TerminalStatus() string { return StatusDelivered }

// InternalTransfer mueve mercancía entre dos bodegas. Conserva el total:
// el efecto neto sobre Product.Quantity es cero.
type InternalTransfer struct {
	DocumentHeader
	FromWarehouseID string
	ToWarehouseID   string
}

func (t *InternalTransfer) DocType() DocumentType  { return DocumentTransfer }
func (t *InternalTransfer) Head() *DocumentHeader  { return &t.DocumentHeader }
func (t *InternalTransfer) TerminalStatus() string { return StatusCompleted }

// StockAdjustment corrige existencias manualmente. Type=in suma,
// Type=out resta con precondición available >= q.
type StockAdjustment struct {
	DocumentHeader
	WarehouseID string
	Type        string // in | out
}

func (a *StockAdjustment) DocType() DocumentType  { return DocumentAdjustment }
func (a *StockAdjustment) Head() *DocumentHeader  { return &a.DocumentHeader }
func (a *StockAdjustment) TerminalStatus() string { return StatusCompleted }
