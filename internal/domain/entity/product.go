package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del catálogo.
// Quantity es el total desnormalizado (suma de OnHand en todas las bodegas);
// lo mantiene el motor de validación en el mismo paso que actualiza
// InventoryRecord, de forma simétrica para todos los tipos de documento.
type Product struct {
	ID            string
	SKU           string // código único
	Name          string
	Category      string
	UnitOfMeasure string
	Price         decimal.Decimal // precio de venta
	ReorderLevel  int64
	Quantity      int64 // total en todas las bodegas
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
