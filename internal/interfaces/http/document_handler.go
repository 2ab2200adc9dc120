package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// DocumentHandler maneja las peticiones HTTP de los cuatro tipos de
// documento de movimiento. La creación es específica por tipo; listar,
// consultar, validar, cancelar, eliminar y PDF comparten implementación
// parametrizada por DocumentType.
type DocumentHandler struct {
	create    *ledger.CreateDocumentUseCase
	validate  *ledger.ValidateDocumentUseCase
	lifecycle *ledger.DocumentLifecycleUseCase
	queries   *ledger.DocumentQueryUseCase
	pdf       *ledger.DocumentPDFUseCase
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(
	create *ledger.CreateDocumentUseCase,
	validateUC *ledger.ValidateDocumentUseCase,
	lifecycle *ledger.DocumentLifecycleUseCase,
	queries *ledger.DocumentQueryUseCase,
	pdf *ledger.DocumentPDFUseCase,
) *DocumentHandler {
	return &DocumentHandler{
		create:    create,
		validate:  validateUC,
		lifecycle: lifecycle,
		queries:   queries,
		pdf:       pdf,
	}
}

// ── Creación por tipo ─────────────────────────────────────────────────────────

// CreateReceipt crea una recepción en estado pending.
func (h *DocumentHandler) CreateReceipt(c *fiber.Ctx) error {
	var in dto.CreateReceiptRequest
	if err := parseAndValidate(c, &in); err != nil {
		return err
	}
	doc, err := h.create.CreateReceipt(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ledger.ToDocumentResponse(doc))
}

// CreateDelivery crea una entrega en estado pending y reserva el stock
// de todas sus líneas; 409 INSUFFICIENT_STOCK si alguna no alcanza.
func (h *DocumentHandler) CreateDelivery(c *fiber.Ctx) error {
	var in dto.CreateDeliveryRequest
	if err := parseAndValidate(c, &in); err != nil {
		return err
	}
	doc, err := h.create.CreateDelivery(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ledger.ToDocumentResponse(doc))
}

// CreateTransfer crea un traslado en estado pending.
func (h *DocumentHandler) CreateTransfer(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := parseAndValidate(c, &in); err != nil {
		return err
	}
	doc, err := h.create.CreateTransfer(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ledger.ToDocumentResponse(doc))
}

// CreateAdjustment crea un ajuste en estado pending.
func (h *DocumentHandler) CreateAdjustment(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if err := parseAndValidate(c, &in); err != nil {
		return err
	}
	doc, err := h.create.CreateAdjustment(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ledger.ToDocumentResponse(doc))
}

// ── Operaciones comunes, parametrizadas por tipo ──────────────────────────────

// List devuelve el listado paginado de un tipo de documento.
func (h *DocumentHandler) List(docType entity.DocumentType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset := pageQuery(c)
		resp, err := h.queries.List(docType, limit, offset)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(resp)
	}
}

// Get devuelve un documento por ID.
func (h *DocumentHandler) Get(docType entity.DocumentType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp, err := h.queries.Get(docType, c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(resp)
	}
}

// Validate aplica el documento al inventario y lo pasa a su estado
// terminal. 409 ALREADY_PROCESSED si ya no está pending.
func (h *DocumentHandler) Validate(docType entity.DocumentType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := h.validate.Validate(c.Context(), docType, id, GetUserID(c)); err != nil {
			return writeError(c, err)
		}
		resp, err := h.queries.Get(docType, id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(resp)
	}
}

// Cancel pasa un documento pending a cancelled; en entregas libera la reserva.
func (h *DocumentHandler) Cancel(docType entity.DocumentType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := h.lifecycle.Cancel(c.Context(), docType, id); err != nil {
			return writeError(c, err)
		}
		resp, err := h.queries.Get(docType, id)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(resp)
	}
}

// Delete elimina un documento pending o cancelled. Un documento validado
// devuelve 409 DOCUMENT_VALIDATED: su efecto ya está en el inventario.
func (h *DocumentHandler) Delete(docType entity.DocumentType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := h.lifecycle.Delete(c.Context(), docType, c.Params("id")); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// PDF descarga la representación imprimible del documento.
func (h *DocumentHandler) PDF(docType entity.DocumentType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, filename, err := h.pdf.Generate(c.Context(), docType, c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Send(data)
	}
}
