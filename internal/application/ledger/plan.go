package ledger

import (
	"sort"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// recordKey identifica un registro de inventario. LocationID "" = sin
// ubicación (los documentos operan a nivel de bodega; la ubicación solo
// participa en registros administrados directamente).
type recordKey struct {
	ProductID   string
	WarehouseID string
	LocationID  string
}

func (k recordKey) locationPtr() *string {
	if k.LocationID == "" {
		return nil
	}
	l := k.LocationID
	return &l
}

// stockEffect es el delta de una línea sobre un registro de inventario.
// Requested conserva la cantidad pedida para reportar faltantes.
type stockEffect struct {
	Key           recordKey
	OnHandDelta   int64
	ReservedDelta int64
	Requested     int64
}

// linePlan es el efecto completo de una línea: uno o dos deltas de
// inventario (dos en traslados), el delta sobre Product.Quantity y la
// entrada de historial a registrar.
type linePlan struct {
	Effects      []stockEffect
	ProductID    string
	ProductDelta int64
	Move         entity.MoveHistory
}

// buildPlan computa el efecto de validación por tipo de documento
// (fase 2 y 3 del protocolo). Las líneas se planifican en el orden del
// documento. Tabla de efectos, con q = cantidad de línea:
//
//	Receipt:            onHand += q               Product.Quantity += q
//	Delivery:           onHand -= q, reserved -= q  Product.Quantity -= q
//	Transfer:           origen onHand -= q; destino onHand += q  (neto 0)
//	Adjustment in:      onHand += q               Product.Quantity += q
//	Adjustment out:     onHand -= q               Product.Quantity -= q
func buildPlan(doc entity.MovementDocument) ([]linePlan, error) {
	head := doc.Head()
	plans := make([]linePlan, 0, len(head.Lines))

	switch d := doc.(type) {
	case *entity.Receipt:
		for _, line := range head.Lines {
			key := recordKey{ProductID: line.ProductID, WarehouseID: d.WarehouseID}
			plans = append(plans, linePlan{
				Effects:      []stockEffect{{Key: key, OnHandDelta: line.Quantity, Requested: line.Quantity}},
				ProductID:    line.ProductID,
				ProductDelta: line.Quantity,
				Move:         moveEntry(line, entity.DocumentReceipt, head.ID, d.WarehouseID, d.WarehouseID),
			})
		}
	case *entity.Delivery:
		for _, line := range head.Lines {
			key := recordKey{ProductID: line.ProductID, WarehouseID: d.WarehouseID}
			plans = append(plans, linePlan{
				Effects:      []stockEffect{{Key: key, OnHandDelta: -line.Quantity, ReservedDelta: -line.Quantity, Requested: line.Quantity}},
				ProductID:    line.ProductID,
				ProductDelta: -line.Quantity,
				Move:         moveEntry(line, entity.DocumentDelivery, head.ID, d.WarehouseID, d.WarehouseID),
			})
		}
	case *entity.InternalTransfer:
		for _, line := range head.Lines {
			src := recordKey{ProductID: line.ProductID, WarehouseID: d.FromWarehouseID}
			dst := recordKey{ProductID: line.ProductID, WarehouseID: d.ToWarehouseID}
			plans = append(plans, linePlan{
				Effects: []stockEffect{
					{Key: src, OnHandDelta: -line.Quantity, Requested: line.Quantity},
					{Key: dst, OnHandDelta: line.Quantity, Requested: line.Quantity},
				},
				ProductID: line.ProductID,
				Move:      moveEntry(line, entity.DocumentTransfer, head.ID, d.FromWarehouseID, d.ToWarehouseID),
			})
		}
	case *entity.StockAdjustment:
		sign := int64(1)
		if d.Type == entity.AdjustmentOut {
			sign = -1
		}
		for _, line := range head.Lines {
			key := recordKey{ProductID: line.ProductID, WarehouseID: d.WarehouseID}
			plans = append(plans, linePlan{
				Effects:      []stockEffect{{Key: key, OnHandDelta: sign * line.Quantity, Requested: line.Quantity}},
				ProductID:    line.ProductID,
				ProductDelta: sign * line.Quantity,
				Move:         moveEntry(line, entity.DocumentAdjustment, head.ID, d.WarehouseID, d.WarehouseID),
			})
		}
	default:
		return nil, domain.ErrInvalidInput
	}
	return plans, nil
}

func moveEntry(line entity.DocumentLine, moveType entity.DocumentType, documentID, fromWarehouse, toWarehouse string) entity.MoveHistory {
	return entity.MoveHistory{
		ProductID:       line.ProductID,
		Quantity:        line.Quantity,
		FromWarehouseID: fromWarehouse,
		ToWarehouseID:   toWarehouse,
		MoveType:        moveType,
		DocumentID:      documentID,
	}
}

// planKeys devuelve las claves afectadas sin duplicados, en orden estable.
// Bloquear siempre en el mismo orden evita deadlocks entre validaciones
// concurrentes que tocan los mismos registros.
func planKeys(plans []linePlan) []recordKey {
	seen := make(map[recordKey]struct{})
	var keys []recordKey
	for _, p := range plans {
		for _, ef := range p.Effects {
			if _, ok := seen[ef.Key]; !ok {
				seen[ef.Key] = struct{}{}
				keys = append(keys, ef.Key)
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].ProductID != keys[j].ProductID {
			return keys[i].ProductID < keys[j].ProductID
		}
		if keys[i].WarehouseID != keys[j].WarehouseID {
			return keys[i].WarehouseID < keys[j].WarehouseID
		}
		return keys[i].LocationID < keys[j].LocationID
	})
	return keys
}

// stockErr construye el error tipado de rechazo para un efecto.
func stockErr(ef stockEffect, available int64, sentinel error) error {
	return &domain.StockError{
		ProductID:   ef.Key.ProductID,
		WarehouseID: ef.Key.WarehouseID,
		LocationID:  ef.Key.LocationID,
		Requested:   ef.Requested,
		Available:   available,
		Err:         sentinel,
	}
}
