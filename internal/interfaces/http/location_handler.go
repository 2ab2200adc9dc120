package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
)

// LocationHandler maneja las peticiones HTTP de ubicaciones.
type LocationHandler struct {
	uc *usecase.LocationUseCase
}

// NewLocationHandler construye el handler.
func NewLocationHandler(uc *usecase.LocationUseCase) *LocationHandler {
	return &LocationHandler{uc: uc}
}

// Create crea una ubicación dentro de una bodega.
func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := parseAndValidate(c, &in); err != nil {
		return err
	}
	resp, err := h.uc.Create(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID obtiene una ubicación.
func (h *LocationHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Update actualiza campos de una ubicación.
func (h *LocationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateLocationRequest
	if err := parseAndValidate(c, &in); err != nil {
		return err
	}
	resp, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// ListByWarehouse lista las ubicaciones de una bodega.
func (h *LocationHandler) ListByWarehouse(c *fiber.Ctx) error {
	limit, offset := pageQuery(c)
	resp, err := h.uc.ListByWarehouse(c.Params("warehouseId"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Delete elimina una ubicación.
func (h *LocationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
