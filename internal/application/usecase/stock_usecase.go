package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// SnapshotCache puerto de cache para snapshots de stock (Redis en
// producción). ok=false en Get significa cache miss.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

const stockCachePrefix = "stock:"

// StockUseCase lecturas de inventario: snapshot por producto/bodega y
// historial de movimientos. El snapshot pasa por un cache read-through
// con TTL corto; el motor de validación lo invalida tras cada commit que
// toca inventario (implementa ledger.SnapshotInvalidator).
type StockUseCase struct {
	inventory repository.InventoryRepository
	moves     repository.MoveHistoryRepository
	cache     SnapshotCache // opcional
	ttl       time.Duration
	log       *logger.Logger
}

// NewStockUseCase construye el caso de uso. cache puede ser nil.
func NewStockUseCase(
	inventory repository.InventoryRepository,
	moves repository.MoveHistoryRepository,
	cache SnapshotCache,
	ttl time.Duration,
	log *logger.Logger,
) *StockUseCase {
	return &StockUseCase{inventory: inventory, moves: moves, cache: cache, ttl: ttl, log: log}
}

// Snapshot devuelve los registros de inventario filtrados por producto
// y/o bodega (vacío no filtra). Camino de lectura de las pantallas de
// stock y cacheable: el inventario solo cambia vía validaciones.
func (uc *StockUseCase) Snapshot(ctx context.Context, productID, warehouseID string, limit, offset int) (*dto.StockSnapshotResponse, error) {
	key := fmt.Sprintf("%s%s:%s:%d:%d", stockCachePrefix, productID, warehouseID, limit, offset)
	if uc.cache != nil {
		if cached, ok, err := uc.cache.Get(ctx, key); err == nil && ok {
			var resp dto.StockSnapshotResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
		} else if err != nil {
			// El cache es best-effort: un Redis caído no tumba la lectura
			uc.log.Warn().Err(err).Msg("cache de stock no disponible")
		}
	}

	records, err := uc.inventory.List(productID, warehouseID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InventoryRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, dto.InventoryRecordResponse{
			ProductID:   r.ProductID,
			WarehouseID: r.WarehouseID,
			LocationID:  r.LocationID,
			OnHand:      r.OnHand,
			Reserved:    r.Reserved,
			Available:   r.Available,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	resp := &dto.StockSnapshotResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}

	if uc.cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := uc.cache.Set(ctx, key, string(payload), uc.ttl); err != nil {
				uc.log.Warn().Err(err).Msg("no se pudo escribir cache de stock")
			}
		}
	}
	return resp, nil
}

// InvalidateStock borra los snapshots cacheados. Implementa
// ledger.SnapshotInvalidator; el fallo solo se registra, el TTL limpia
// lo que quede.
func (uc *StockUseCase) InvalidateStock(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteByPrefix(ctx, stockCachePrefix); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar cache de stock")
	}
}

// MoveHistory lista el historial de movimientos con filtros opcionales.
func (uc *StockUseCase) MoveHistory(productID, warehouseID string, limit, offset int) (*dto.MoveHistoryListResponse, error) {
	moves, err := uc.moves.List(productID, warehouseID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MoveHistoryResponse, 0, len(moves))
	for _, m := range moves {
		items = append(items, dto.MoveHistoryResponse{
			ID:              m.ID,
			ProductID:       m.ProductID,
			Quantity:        m.Quantity,
			FromWarehouseID: m.FromWarehouseID,
			ToWarehouseID:   m.ToWarehouseID,
			FromLocationID:  m.FromLocationID,
			ToLocationID:    m.ToLocationID,
			MoveType:        string(m.MoveType),
			DocumentID:      m.DocumentID,
			MovedBy:         m.MovedBy,
			MovedAt:         m.MovedAt,
		})
	}
	return &dto.MoveHistoryListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}
