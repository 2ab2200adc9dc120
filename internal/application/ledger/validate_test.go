package ledger_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

func oneLine(productID string, qty int64) []dto.DocumentLineRequest {
	return []dto.DocumentLineRequest{{ProductID: productID, Quantity: qty}}
}

// ──────────────────────────────────────────────────────────────────────────────
// Receipt: creación numerada y validación con efecto completo
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateReceipt_AplicaEfectoCompleto(t *testing.T) {
	env := newLedgerEnv()
	ctx := context.Background()

	receipt, err := env.create.CreateReceipt(ctx, testActor, dto.CreateReceiptRequest{
		SupplierName: "Proveedor Uno",
		WarehouseID:  testWarehouse,
		Lines:        oneLine(testProduct, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, receipt.Status)

	// Crear no toca inventario
	assert.Equal(t, int64(0), env.record(testProduct, testWarehouse).OnHand)

	require.NoError(t, env.validate.Validate(ctx, entity.DocumentReceipt, receipt.ID, testActor))

	rec := env.record(testProduct, testWarehouse)
	assert.Equal(t, int64(10), rec.OnHand)
	assert.Equal(t, int64(0), rec.Reserved)
	assert.Equal(t, int64(10), rec.Available)
	assert.Equal(t, int64(10), env.store.products[testProduct].Quantity)

	stored := env.store.receipts[receipt.ID]
	assert.Equal(t, entity.StatusReceived, stored.Status)
	require.NotNil(t, stored.ValidatedBy)
	assert.Equal(t, testActor, *stored.ValidatedBy)
	assert.NotNil(t, stored.ValidationDate)

	require.Len(t, env.store.moves, 1)
	move := env.store.moves[0]
	assert.Equal(t, entity.DocumentReceipt, move.MoveType)
	assert.Equal(t, testProduct, move.ProductID)
	assert.Equal(t, int64(10), move.Quantity)
	assert.Equal(t, testWarehouse, move.FromWarehouseID)
	assert.Equal(t, testWarehouse, move.ToWarehouseID)
	assert.Equal(t, testActor, move.MovedBy)
}

func TestCreateReceipt_NumeracionAutomatica(t *testing.T) {
	env := newLedgerEnv()
	ctx := context.Background()

	first, err := env.create.CreateReceipt(ctx, testActor, dto.CreateReceiptRequest{
		SupplierName: "Proveedor", WarehouseID: testWarehouse, Lines: oneLine(testProduct, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, "1", first.DocumentNumber)

	second, err := env.create.CreateReceipt(ctx, testActor, dto.CreateReceiptRequest{
		SupplierName: "Proveedor", WarehouseID: testWarehouse, Lines: oneLine(testProduct, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, "2", second.DocumentNumber)

	// Número explícito del usuario se respeta sin renumerar
	custom, err := env.create.CreateReceipt(ctx, testActor, dto.CreateReceiptRequest{
		DocumentNumber: "R-77", SupplierName: "Proveedor", WarehouseID: testWarehouse, Lines: oneLine(testProduct, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, "R-77", custom.DocumentNumber)

	// Número explícito duplicado no reintenta: Duplicate al cliente
	_, err = env.create.CreateReceipt(ctx, testActor, dto.CreateReceiptRequest{
		DocumentNumber: "R-77", SupplierName: "Proveedor", WarehouseID: testWarehouse, Lines: oneLine(testProduct, 1),
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreateReceipt_ColisionDeNumeroReintenta(t *testing.T) {
	env := newLedgerEnv()
	ctx := context.Background()

	_, err := env.create.CreateReceipt(ctx, testActor, dto.CreateReceiptRequest{
		SupplierName: "Proveedor", WarehouseID: testWarehouse, Lines: oneLine(testProduct, 1),
	})
	require.NoError(t, err)

	// La próxima lectura del máximo llega desfasada: el primer intento
	// choca con el número "1" ya usado y el reintento renumera.
	env.store.staleReceiptMax = 1
	receipt, err := env.create.CreateReceipt(ctx, testActor, dto.CreateReceiptRequest{
		SupplierName: "Proveedor", WarehouseID: testWarehouse, Lines: oneLine(testProduct, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, "2", receipt.DocumentNumber)
	assert.Len(t, env.store.receipts, 2)
}

func TestCreateReceipt_Invalido(t *testing.T) {
	env := newLedgerEnv()
	ctx := context.Background()

	_, err := env.create.CreateReceipt(ctx, testActor, dto.CreateReceiptRequest{
		SupplierName: "Proveedor", WarehouseID: testWarehouse,
		Lines: oneLine("producto-inexistente", 1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.create.CreateReceipt(ctx, testActor, dto.CreateReceiptRequest{
		SupplierName: "Proveedor", WarehouseID: "bodega-inexistente",
		Lines: oneLine(testProduct, 1),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = env.create.CreateReceipt(ctx, testActor, dto.CreateReceiptRequest{
		SupplierName: "Proveedor", WarehouseID: testWarehouse,
		Lines: oneLine(testProduct, 0),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Delivery: reserva en dos fases
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateDelivery_ReservaStock(t *testing.T) {
	env := newLedgerEnv()
	env.seedStock(testProduct, testWarehouse, 10, 0)
	ctx := context.Background()

	_, err := env.create.CreateDelivery(ctx, testActor, dto.CreateDeliveryRequest{
		CustomerName: "Cliente Uno", WarehouseID: testWarehouse, Lines: oneLine(testProduct, 4),
	})
	require.NoError(t, err)

	rec := env.record(testProduct, testWarehouse)
	assert.Equal(t, int64(10), rec.OnHand)
	assert.Equal(t, int64(4), rec.Reserved)
	assert.Equal(t, int64(6), rec.Available)
	// La reserva no toca el total del catálogo
	assert.Equal(t, int64(10), env.store.products[testProduct].Quantity)
}

func TestCreateDelivery_StockInsuficienteSinEfectosParciales(t *testing.T) {
	env := newLedgerEnv()
	env.seedStock(testProduct, testWarehouse, 10, 0)
	env.seedStock(testProduct2, testWarehouse, 3, 0)
	ctx := context.Background()

	// La primera línea cabe; la segunda no. Todo debe revertirse.
	_, err := env.create.CreateDelivery(ctx, testActor, dto.CreateDeliveryRequest{
		CustomerName: "Cliente", WarehouseID: testWarehouse,
		Lines: []dto.DocumentLineRequest{
			{ProductID: testProduct, Quantity: 6},
			{ProductID: testProduct2, Quantity: 5},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, testProduct2, stockErr.ProductID)
	assert.Equal(t, testWarehouse, stockErr.WarehouseID)
	assert.Equal(t, int64(5), stockErr.Requested)
	assert.Equal(t, int64(3), stockErr.Available)

	assert.Equal(t, int64(0), env.record(testProduct, testWarehouse).Reserved)
	assert.Equal(t, int64(0), env.record(testProduct2, testWarehouse).Reserved)
	assert.Empty(t, env.store.deliveries)
}

func TestValidateDelivery_ConsumaReserva(t *testing.T) {
	env := newLedgerEnv()
	env.seedStock(testProduct, testWarehouse, 10, 0)
	ctx := context.Background()

	delivery, err := env.create.CreateDelivery(ctx, testActor, dto.CreateDeliveryRequest{
		CustomerName: "Cliente", WarehouseID: testWarehouse, Lines: oneLine(testProduct, 4),
	})
	require.NoError(t, err)
	require.NoError(t, env.validate.Validate(ctx, entity.DocumentDelivery, delivery.ID, testActor))

	rec := env.record(testProduct, testWarehouse)
	assert.Equal(t, int64(6), rec.OnHand)
	assert.Equal(t, int64(0), rec.Reserved)
	assert.Equal(t, int64(6), rec.Available)
	assert.Equal(t, int64(6), env.store.products[testProduct].Quantity)
	assert.Equal(t, entity.StatusDelivered, env.store.deliveries[delivery.ID].Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transfer: conservación del total
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateTransfer_ConservaElTotal(t *testing.T) {
	env := newLedgerEnv()
	env.seedStock(testProduct, testWarehouse, 8, 0)
	ctx := context.Background()

	transfer, err := env.create.CreateTransfer(ctx, testActor, dto.CreateTransferRequest{
		FromWarehouseID: testWarehouse, ToWarehouseID: testWarehouse2, Lines: oneLine(testProduct, 3),
	})
	require.NoError(t, err)
	require.NoError(t, env.validate.Validate(ctx, entity.DocumentTransfer, transfer.ID, testActor))

	assert.Equal(t, int64(5), env.record(testProduct, testWarehouse).OnHand)
	// El registro destino se crea perezosamente al aplicar
	assert.Equal(t, int64(3), env.record(testProduct, testWarehouse2).OnHand)
	// Efecto neto cero sobre el total del catálogo
	assert.Equal(t, int64(8), env.store.products[testProduct].Quantity)

	require.Len(t, env.store.moves, 1)
	assert.Equal(t, testWarehouse, env.store.moves[0].FromWarehouseID)
	assert.Equal(t, testWarehouse2, env.store.moves[0].ToWarehouseID)
}

func TestValidateTransfer_OrigenInsuficienteNoDejaRastro(t *testing.T) {
	env := newLedgerEnv()
	env.seedStock(testProduct, testWarehouse, 2, 0)
	ctx := context.Background()

	transfer, err := env.create.CreateTransfer(ctx, testActor, dto.CreateTransferRequest{
		FromWarehouseID: testWarehouse, ToWarehouseID: testWarehouse2, Lines: oneLine(testProduct, 5),
	})
	require.NoError(t, err)

	err = env.validate.Validate(ctx, entity.DocumentTransfer, transfer.ID, testActor)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(2), env.record(testProduct, testWarehouse).OnHand)
	assert.Equal(t, int64(0), env.record(testProduct, testWarehouse2).OnHand)
	assert.Equal(t, entity.StatusPending, env.store.transfers[transfer.ID].Status)
	assert.Empty(t, env.store.moves)
}

func TestCreateTransfer_MismaBodegaRechazado(t *testing.T) {
	env := newLedgerEnv()
	ctx := context.Background()

	_, err := env.create.CreateTransfer(ctx, testActor, dto.CreateTransferRequest{
		FromWarehouseID: testWarehouse, ToWarehouseID: testWarehouse, Lines: oneLine(testProduct, 1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjustment: entrada y salida con piso de disponible
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateAdjustment_EntradaYSalida(t *testing.T) {
	env := newLedgerEnv()
	env.seedStock(testProduct, testWarehouse, 4, 0)
	ctx := context.Background()

	in, err := env.create.CreateAdjustment(ctx, testActor, dto.CreateAdjustmentRequest{
		WarehouseID: testWarehouse, Type: entity.AdjustmentIn, Lines: oneLine(testProduct, 5),
	})
	require.NoError(t, err)
	require.NoError(t, env.validate.Validate(ctx, entity.DocumentAdjustment, in.ID, testActor))
	assert.Equal(t, int64(9), env.record(testProduct, testWarehouse).OnHand)
	assert.Equal(t, int64(9), env.store.products[testProduct].Quantity)

	out, err := env.create.CreateAdjustment(ctx, testActor, dto.CreateAdjustmentRequest{
		WarehouseID: testWarehouse, Type: entity.AdjustmentOut, Lines: oneLine(testProduct, 6),
	})
	require.NoError(t, err)
	require.NoError(t, env.validate.Validate(ctx, entity.DocumentAdjustment, out.ID, testActor))
	assert.Equal(t, int64(3), env.record(testProduct, testWarehouse).OnHand)
	assert.Equal(t, int64(3), env.store.products[testProduct].Quantity)
}

func TestValidateAdjustmentOut_RespetaReserva(t *testing.T) {
	env := newLedgerEnv()
	// 10 en existencia pero 8 reservados: solo 2 disponibles
	env.seedStock(testProduct, testWarehouse, 10, 8)
	ctx := context.Background()

	out, err := env.create.CreateAdjustment(ctx, testActor, dto.CreateAdjustmentRequest{
		WarehouseID: testWarehouse, Type: entity.AdjustmentOut, Lines: oneLine(testProduct, 5),
	})
	require.NoError(t, err)

	err = env.validate.Validate(ctx, entity.DocumentAdjustment, out.ID, testActor)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	rec := env.record(testProduct, testWarehouse)
	assert.Equal(t, int64(10), rec.OnHand)
	assert.Equal(t, int64(8), rec.Reserved)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones inválidas y concurrencia
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_SoloUnaVez(t *testing.T) {
	env := newLedgerEnv()
	ctx := context.Background()

	receipt, err := env.create.CreateReceipt(ctx, testActor, dto.CreateReceiptRequest{
		SupplierName: "Proveedor", WarehouseID: testWarehouse, Lines: oneLine(testProduct, 10),
	})
	require.NoError(t, err)
	require.NoError(t, env.validate.Validate(ctx, entity.DocumentReceipt, receipt.ID, testActor))

	err = env.validate.Validate(ctx, entity.DocumentReceipt, receipt.ID, testActor)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	// El efecto no se duplica
	assert.Equal(t, int64(10), env.record(testProduct, testWarehouse).OnHand)
	assert.Len(t, env.store.moves, 1)
}

func TestValidate_DocumentoInexistente(t *testing.T) {
	env := newLedgerEnv()
	err := env.validate.Validate(context.Background(), entity.DocumentReceipt, uuid36(), testActor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestValidacionesConcurrentes_SinSobregiro(t *testing.T) {
	env := newLedgerEnv()
	env.seedStock(testProduct, testWarehouse, 5, 0)
	ctx := context.Background()

	// Dos salidas de 5 sobre 5 existentes: exactamente una puede pasar.
	first, err := env.create.CreateAdjustment(ctx, testActor, dto.CreateAdjustmentRequest{
		WarehouseID: testWarehouse, Type: entity.AdjustmentOut, Lines: oneLine(testProduct, 5),
	})
	require.NoError(t, err)
	second, err := env.create.CreateAdjustment(ctx, testActor, dto.CreateAdjustmentRequest{
		WarehouseID: testWarehouse, Type: entity.AdjustmentOut, Lines: oneLine(testProduct, 5),
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = env.validate.Validate(ctx, entity.DocumentAdjustment, id, testActor)
		}(i, id)
	}
	wg.Wait()

	var okCount, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			okCount++
		default:
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			insufficient++
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(0), env.record(testProduct, testWarehouse).OnHand)
	assert.Equal(t, int64(0), env.store.products[testProduct].Quantity)
}

func uuid36() string { return "11111111-1111-1111-1111-111111111111" }
