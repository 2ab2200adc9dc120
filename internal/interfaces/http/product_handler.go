package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
)

// ProductHandler maneja las peticiones HTTP del catálogo de productos.
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create crea un producto. Devuelve 409 si el SKU ya existe.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := parseAndValidate(c, &in); err != nil {
		return err
	}
	resp, err := h.uc.Create(in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID obtiene un producto.
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetByID(c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Update actualiza campos de un producto.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := parseAndValidate(c, &in); err != nil {
		return err
	}
	resp, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// List lista productos con búsqueda opcional (?search=) por nombre o SKU.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit, offset := pageQuery(c)
	resp, err := h.uc.List(c.Query("search"), limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// Delete elimina un producto.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
