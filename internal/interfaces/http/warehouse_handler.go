package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
)

// WarehouseHandler maneja las peticiones HTTP de bodegas.
type WarehouseHandler struct {
	uc *usecase.WarehouseUseCase
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(uc *usecase.WarehouseUseCase) *WarehouseHandler {
	return &WarehouseHandler{uc: uc}
}

// Create crea una bodega.
func (h *WarehouseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateWarehouseRequest
	if err := parseAndValidate(c, &in); err != nil {
		return err
	}
	resp, err := h.uc.Create(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID obtiene una bodega.
func (h *WarehouseHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Update actualiza campos de una bodega.
func (h *WarehouseHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateWarehouseRequest
	if err := parseAndValidate(c, &in); err != nil {
		return err
	}
	resp, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// List lista bodegas paginadas.
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	limit, offset := pageQuery(c)
	resp, err := h.uc.List(limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Delete elimina una bodega.
func (h *WarehouseHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
