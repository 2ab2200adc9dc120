package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	WarehouseUC *usecase.WarehouseUseCase
	LocationUC  *usecase.LocationUseCase
	ProductUC   *usecase.ProductUseCase
	StockUC     *usecase.StockUseCase
	CreateUC    *ledger.CreateDocumentUseCase
	ValidateUC  *ledger.ValidateDocumentUseCase
	LifecycleUC *ledger.DocumentLifecycleUseCase
	QueryUC     *ledger.DocumentQueryUseCase
	PDFUC       *ledger.DocumentPDFUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Lectura para cualquier usuario
// autenticado; escritura solo para admin y operador.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/profile", authHandler.Profile)
	writer := RequireWriter()

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", writer, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", writer, warehouseHandler.Update)
	warehouses.Delete("/:id", writer, warehouseHandler.Delete)

	// Locations
	locationHandler := NewLocationHandler(deps.LocationUC)
	warehouses.Get("/:warehouseId/locations", locationHandler.ListByWarehouse)
	locations := protected.Group("/locations")
	locations.Post("/", writer, locationHandler.Create)
	locations.Get("/:id", locationHandler.GetByID)
	locations.Put("/:id", writer, locationHandler.Update)
	locations.Delete("/:id", writer, locationHandler.Delete)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", writer, productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", writer, productHandler.Update)
	products.Delete("/:id", writer, productHandler.Delete)

	// Stock (solo lectura)
	stockHandler := NewStockHandler(deps.StockUC)
	protected.Get("/stock", stockHandler.Snapshot)
	protected.Get("/moves", stockHandler.Moves)

	// Documentos de movimiento
	documentHandler := NewDocumentHandler(deps.CreateUC, deps.ValidateUC, deps.LifecycleUC, deps.QueryUC, deps.PDFUC)

	receipts := protected.Group("/receipts")
	receipts.Post("/", writer, documentHandler.CreateReceipt)
	registerDocumentRoutes(receipts, writer, documentHandler, entity.DocumentReceipt)

	deliveries := protected.Group("/deliveries")
	deliveries.Post("/", writer, documentHandler.CreateDelivery)
	registerDocumentRoutes(deliveries, writer, documentHandler, entity.DocumentDelivery)

	transfers := protected.Group("/transfers")
	transfers.Post("/", writer, documentHandler.CreateTransfer)
	registerDocumentRoutes(transfers, writer, documentHandler, entity.DocumentTransfer)

	adjustments := protected.Group("/adjustments")
	adjustments.Post("/", writer, documentHandler.CreateAdjustment)
	registerDocumentRoutes(adjustments, writer, documentHandler, entity.DocumentAdjustment)
}

// registerDocumentRoutes registra las operaciones comunes de un tipo de
// documento en su grupo.
func registerDocumentRoutes(g fiber.Router, writer fiber.Handler, h *DocumentHandler, docType entity.DocumentType) {
	g.Get("/", h.List(docType))
	g.Get("/:id", h.Get(docType))
	g.Get("/:id/pdf", h.PDF(docType))
	g.Post("/:id/validate", writer, h.Validate(docType))
	g.Post("/:id/cancel", writer, h.Cancel(docType))
	g.Delete("/:id", writer, h.Delete(docType))
}
