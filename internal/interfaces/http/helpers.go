package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
)

var validate = validator.New()

// parseAndValidate decodifica el body JSON y aplica las reglas de los
// tags `validate`. out debe ser puntero a struct.
func parseAndValidate(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(out); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	return nil
}

// writeError traduce errores de dominio a respuestas HTTP. Los rechazos
// de stock llevan Details con el faltante numérico.
func writeError(c *fiber.Ctx, err error) error {
	var stockErr *domain.StockError
	if errors.As(err, &stockErr) {
		code := "INSUFFICIENT_STOCK"
		if !errors.Is(err, domain.ErrInsufficientStock) {
			code = "INVARIANT_VIOLATION"
		}
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    code,
			Message: stockErr.Error(),
			Details: &dto.StockDetails{
				ProductID:   stockErr.ProductID,
				WarehouseID: stockErr.WarehouseID,
				LocationID:  stockErr.LocationID,
				Requested:   stockErr.Requested,
				Available:   stockErr.Available,
			},
		})
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: "el email ya está registrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.Is(err, domain.ErrAlreadyProcessed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_PROCESSED", Message: "el documento ya fue procesado"})
	case errors.Is(err, domain.ErrDocumentValidated):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DOCUMENT_VALIDATED", Message: "un documento validado no puede eliminarse"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrInvariantViolation):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVARIANT_VIOLATION", Message: "la operación dejaría el inventario en estado inválido"})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// pageQuery lee limit/offset del query string con los defaults de PageRequest.
func pageQuery(c *fiber.Ctx) (limit, offset int) {
	var page dto.PageRequest
	_ = c.QueryParser(&page)
	page.DefaultPage()
	return page.Limit, page.Offset
}
