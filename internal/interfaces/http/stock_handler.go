package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/usecase"
)

// StockHandler maneja las lecturas de inventario: snapshot y movimientos.
type StockHandler struct {
	uc *usecase.StockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *usecase.StockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// Snapshot devuelve los registros de inventario, filtrables por
// ?product_id= y ?warehouse_id=.
func (h *StockHandler) Snapshot(c *fiber.Ctx) error {
	limit, offset := pageQuery(c)
	resp, err := h.uc.Snapshot(c.Context(), c.Query("product_id"), c.Query("warehouse_id"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Moves devuelve el historial de movimientos, filtrable por
// ?product_id= y ?warehouse_id= (origen o destino).
func (h *StockHandler) Moves(c *fiber.Ctx) error {
	limit, offset := pageQuery(c)
	resp, err := h.uc.MoveHistory(c.Query("product_id"), c.Query("warehouse_id"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}
