package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/almacen-api/internal/application/auth"
	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/almacen-api/internal/infrastructure/pdf"
	"github.com/jhoicas/almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/almacen-api/internal/interfaces/http"
	"github.com/jhoicas/almacen-api/pkg/config"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Cache de snapshots de stock (opcional: REDIS_ADDR vacío lo desactiva)
	var snapshotCache usecase.SnapshotCache
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisClient.Close()
		snapshotCache = redisClient
	}

	userRepo := postgres.NewUserRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	locationRepo := postgres.NewLocationRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	inventoryRepo := postgres.NewInventoryRepository(pool)
	moveRepo := postgres.NewMoveHistoryRepository(pool)
	receiptRepo := postgres.NewReceiptRepository(pool)
	deliveryRepo := postgres.NewDeliveryRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	adjustmentRepo := postgres.NewAdjustmentRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	warehouseUC := usecase.NewWarehouseUseCase(warehouseRepo)
	locationUC := usecase.NewLocationUseCase(locationRepo, warehouseRepo)
	productUC := usecase.NewProductUseCase(productRepo)
	stockUC := usecase.NewStockUseCase(
		inventoryRepo, moveRepo, snapshotCache,
		time.Duration(cfg.Redis.TTLSeconds)*time.Second, log,
	)

	// Motor de validación y ciclo de vida de documentos
	createUC := ledger.NewCreateDocumentUseCase(txRunner, productRepo, warehouseRepo, stockUC, log)
	validateUC := ledger.NewValidateDocumentUseCase(txRunner, stockUC, log)
	lifecycleUC := ledger.NewDocumentLifecycleUseCase(txRunner, stockUC, log)
	queryUC := ledger.NewDocumentQueryUseCase(receiptRepo, deliveryRepo, transferRepo, adjustmentRepo)
	pdfUC := ledger.NewDocumentPDFUseCase(queryUC, warehouseRepo, productRepo, infrapdf.NewMarotoPDFGenerator())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		WarehouseUC: warehouseUC,
		LocationUC:  locationUC,
		ProductUC:   productUC,
		StockUC:     stockUC,
		CreateUC:    createUC,
		ValidateUC:  validateUC,
		LifecycleUC: lifecycleUC,
		QueryUC:     queryUC,
		PDFUC:       pdfUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
