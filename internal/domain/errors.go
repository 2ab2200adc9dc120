package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrAlreadyProcessed   = errors.New("documento ya procesado")
	ErrDocumentValidated  = errors.New("documento validado no puede eliminarse")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrInvariantViolation = errors.New("invariante de inventario violado")
)

// StockError describe el rechazo de una línea contra un registro de inventario:
// qué producto, en qué bodega, cuánto se pidió y cuánto había disponible.
// Envuelve ErrInsufficientStock o ErrInvariantViolation para errors.Is.
type StockError struct {
	ProductID   string
	WarehouseID string
	LocationID  string // vacío = sin ubicación
	Requested   int64
	Available   int64
	Err         error
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%v: producto %s en bodega %s (solicitado %d, disponible %d)",
		e.Err, e.ProductID, e.WarehouseID, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error { return e.Err }
