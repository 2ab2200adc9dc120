package ledger_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/application/ledger"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria: un memStore con repos atados a él y un TxRunner que
// serializa con mutex y restaura un snapshot si el callback falla, para
// reproducir la atomicidad de la transacción real.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	inventory   map[string]*entity.InventoryRecord // clave prod|bodega|ubicación
	products    map[string]*entity.Product
	warehouses  map[string]*entity.Warehouse
	receipts    map[string]*entity.Receipt
	deliveries  map[string]*entity.Delivery
	transfers   map[string]*entity.InternalTransfer
	adjustments map[string]*entity.StockAdjustment
	moves       []*entity.MoveHistory

	// staleReceiptMax fuerza N lecturas desfasadas de MaxDocumentNumber
	// en receipts, para provocar una colisión de numeración automática.
	staleReceiptMax int
}

func newMemStore() *memStore {
	return &memStore{
		inventory:   map[string]*entity.InventoryRecord{},
		products:    map[string]*entity.Product{},
		warehouses:  map[string]*entity.Warehouse{},
		receipts:    map[string]*entity.Receipt{},
		deliveries:  map[string]*entity.Delivery{},
		transfers:   map[string]*entity.InternalTransfer{},
		adjustments: map[string]*entity.StockAdjustment{},
	}
}

func invKey(productID, warehouseID string, locationID *string) string {
	loc := ""
	if locationID != nil {
		loc = *locationID
	}
	return productID + "|" + warehouseID + "|" + loc
}

func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	for k, v := range s.inventory {
		c.inventory[k] = v.Clone()
	}
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.warehouses {
		w := *v
		c.warehouses[k] = &w
	}
	for k, v := range s.receipts {
		d := *v
		c.receipts[k] = &d
	}
	for k, v := range s.deliveries {
		d := *v
		c.deliveries[k] = &d
	}
	for k, v := range s.transfers {
		d := *v
		c.transfers[k] = &d
	}
	for k, v := range s.adjustments {
		d := *v
		c.adjustments[k] = &d
	}
	c.moves = append(c.moves, s.moves...)
	return c
}

func (s *memStore) restore(snap *memStore) {
	s.inventory = snap.inventory
	s.products = snap.products
	s.warehouses = snap.warehouses
	s.receipts = snap.receipts
	s.deliveries = snap.deliveries
	s.transfers = snap.transfers
	s.adjustments = snap.adjustments
	s.moves = snap.moves
	// staleReceiptMax es inyección de fallos, no datos del store: las
	// lecturas desfasadas ya consumidas no se reponen en el rollback.
}

func (s *memStore) repos() ledger.Repos {
	return ledger.Repos{
		Receipts:    &memReceiptRepo{s},
		Deliveries:  &memDeliveryRepo{s},
		Transfers:   &memTransferRepo{s},
		Adjustments: &memAdjustmentRepo{s},
		Inventory:   &memInventoryRepo{s},
		Products:    &memProductRepo{s},
		Moves:       &memMoveRepo{s},
	}
}

// memTxRunner serializa las "transacciones" con un mutex y hace rollback
// restaurando el snapshot si fn devuelve error.
type memTxRunner struct {
	mu sync.Mutex
	s  *memStore
}

func (t *memTxRunner) Run(_ context.Context, fn func(r ledger.Repos) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := t.s.snapshot()
	if err := fn(t.s.repos()); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// ── Inventario ────────────────────────────────────────────────────────────────

type memInventoryRepo struct{ s *memStore }

func (r *memInventoryRepo) Get(productID, warehouseID string, locationID *string) (*entity.InventoryRecord, error) {
	if rec, ok := r.s.inventory[invKey(productID, warehouseID, locationID)]; ok {
		return rec.Clone(), nil
	}
	return &entity.InventoryRecord{ProductID: productID, WarehouseID: warehouseID, LocationID: locationID}, nil
}

func (r *memInventoryRepo) GetForUpdate(productID, warehouseID string, locationID *string) (*entity.InventoryRecord, error) {
	return r.Get(productID, warehouseID, locationID)
}

func (r *memInventoryRepo) Upsert(record *entity.InventoryRecord) error {
	r.s.inventory[invKey(record.ProductID, record.WarehouseID, record.LocationID)] = record.Clone()
	return nil
}

func (r *memInventoryRepo) List(productID, warehouseID string, limit, offset int) ([]*entity.InventoryRecord, error) {
	var list []*entity.InventoryRecord
	for _, rec := range r.s.inventory {
		if (productID == "" || rec.ProductID == productID) && (warehouseID == "" || rec.WarehouseID == warehouseID) {
			list = append(list, rec.Clone())
		}
	}
	return list, nil
}

// ── Productos y bodegas ───────────────────────────────────────────────────────

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(p *entity.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	if p, ok := r.s.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memProductRepo) GetBySKU(sku string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memProductRepo) Update(p *entity.Product) error {
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) AddQuantity(productID string, delta int64) error {
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Quantity += delta
	return nil
}

func (r *memProductRepo) List(string, int, int) ([]*entity.Product, error) { return nil, nil }
func (r *memProductRepo) Delete(id string) error {
	delete(r.s.products, id)
	return nil
}

type memWarehouseRepo struct{ s *memStore }

func (r *memWarehouseRepo) Create(w *entity.Warehouse) error {
	cp := *w
	r.s.warehouses[w.ID] = &cp
	return nil
}

func (r *memWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	if w, ok := r.s.warehouses[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memWarehouseRepo) Update(*entity.Warehouse) error             { return nil }
func (r *memWarehouseRepo) List(int, int) ([]*entity.Warehouse, error) { return nil, nil }
func (r *memWarehouseRepo) Delete(string) error                        { return nil }

// ── Historial ─────────────────────────────────────────────────────────────────

type memMoveRepo struct{ s *memStore }

func (r *memMoveRepo) Create(m *entity.MoveHistory) error {
	cp := *m
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	r.s.moves = append(r.s.moves, &cp)
	return nil
}

func (r *memMoveRepo) List(productID, warehouseID string, limit, offset int) ([]*entity.MoveHistory, error) {
	var list []*entity.MoveHistory
	for _, m := range r.s.moves {
		if (productID == "" || m.ProductID == productID) &&
			(warehouseID == "" || m.FromWarehouseID == warehouseID || m.ToWarehouseID == warehouseID) {
			cp := *m
			list = append(list, &cp)
		}
	}
	return list, nil
}

// ── Documentos ────────────────────────────────────────────────────────────────

func markValidatedHeader(h *entity.DocumentHeader, status, by string, at time.Time) {
	h.Status = status
	h.ValidatedBy = &by
	h.ValidationDate = &at
	h.UpdatedAt = at
}

type memReceiptRepo struct{ s *memStore }

func (r *memReceiptRepo) Create(doc *entity.Receipt) error {
	for _, existing := range r.s.receipts {
		if existing.DocumentNumber == doc.DocumentNumber {
			return domain.ErrDuplicate
		}
	}
	cp := *doc
	r.s.receipts[doc.ID] = &cp
	return nil
}

func (r *memReceiptRepo) GetByID(id string) (*entity.Receipt, error) {
	if d, ok := r.s.receipts[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memReceiptRepo) List(int, int) ([]*entity.Receipt, error) {
	var list []*entity.Receipt
	for _, d := range r.s.receipts {
		cp := *d
		list = append(list, &cp)
	}
	return list, nil
}

func (r *memReceiptRepo) MarkValidated(id, status, by string, at time.Time) error {
	d, ok := r.s.receipts[id]
	if !ok {
		return domain.ErrNotFound
	}
	markValidatedHeader(&d.DocumentHeader, status, by, at)
	return nil
}

func (r *memReceiptRepo) UpdateStatus(id, status string) error {
	d, ok := r.s.receipts[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.Status = status
	return nil
}

func (r *memReceiptRepo) Delete(id string) error {
	if _, ok := r.s.receipts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.receipts, id)
	return nil
}

func (r *memReceiptRepo) MaxDocumentNumber() (int64, error) {
	max := maxNumber(func(yield func(string)) {
		for _, d := range r.s.receipts {
			yield(d.DocumentNumber)
		}
	})
	if r.s.staleReceiptMax > 0 {
		r.s.staleReceiptMax--
		return max - 1, nil
	}
	return max, nil
}

type memDeliveryRepo struct{ s *memStore }

func (r *memDeliveryRepo) Create(doc *entity.Delivery) error {
	for _, existing := range r.s.deliveries {
		if existing.DocumentNumber == doc.DocumentNumber {
			return domain.ErrDuplicate
		}
	}
	cp := *doc
	r.s.deliveries[doc.ID] = &cp
	return nil
}

func (r *memDeliveryRepo) GetByID(id string) (*entity.Delivery, error) {
	if d, ok := r.s.deliveries[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memDeliveryRepo) List(int, int) ([]*entity.Delivery, error) { return nil, nil }

func (r *memDeliveryRepo) MarkValidated(id, status, by string, at time.Time) error {
	d, ok := r.s.deliveries[id]
	if !ok {
		return domain.ErrNotFound
	}
	markValidatedHeader(&d.DocumentHeader, status, by, at)
	return nil
}

func (r *memDeliveryRepo) UpdateStatus(id, status string) error {
	d, ok := r.s.deliveries[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.Status = status
	return nil
}

func (r *memDeliveryRepo) Delete(id string) error {
	if _, ok := r.s.deliveries[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.deliveries, id)
	return nil
}

func (r *memDeliveryRepo) MaxDocumentNumber() (int64, error) {
	return maxNumber(func(yield func(string)) {
		for _, d := range r.s.deliveries {
			yield(d.DocumentNumber)
		}
	}), nil
}

type memTransferRepo struct{ s *memStore }

func (r *memTransferRepo) Create(doc *entity.InternalTransfer) error {
	for _, existing := range r.s.transfers {
		if existing.DocumentNumber == doc.DocumentNumber {
			return domain.ErrDuplicate
		}
	}
	cp := *doc
	r.s.transfers[doc.ID] = &cp
	return nil
}

func (r *memTransferRepo) GetByID(id string) (*entity.InternalTransfer, error) {
	if d, ok := r.s.transfers[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memTransferRepo) List(int, int) ([]*entity.InternalTransfer, error) { return nil, nil }

func (r *memTransferRepo) MarkValidated(id, status, by string, at time.Time) error {
	d, ok := r.s.transfers[id]
	if !ok {
		return domain.ErrNotFound
	}
	markValidatedHeader(&d.DocumentHeader, status, by, at)
	return nil
}

func (r *memTransferRepo) UpdateStatus(id, status string) error {
	d, ok := r.s.transfers[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.Status = status
	return nil
}

func (r *memTransferRepo) Delete(id string) error {
	if _, ok := r.s.transfers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.transfers, id)
	return nil
}

func (r *memTransferRepo) MaxDocumentNumber() (int64, error) {
	return maxNumber(func(yield func(string)) {
		for _, d := range r.s.transfers {
			yield(d.DocumentNumber)
		}
	}), nil
}

type memAdjustmentRepo struct{ s *memStore }

func (r *memAdjustmentRepo) Create(doc *entity.StockAdjustment) error {
	for _, existing := range r.s.adjustments {
		if existing.DocumentNumber == doc.DocumentNumber {
			return domain.ErrDuplicate
		}
	}
	cp := *doc
	r.s.adjustments[doc.ID] = &cp
	return nil
}

func (r *memAdjustmentRepo) GetByID(id string) (*entity.StockAdjustment, error) {
	if d, ok := r.s.adjustments[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memAdjustmentRepo) List(int, int) ([]*entity.StockAdjustment, error) { return nil, nil }

func (r *memAdjustmentRepo) MarkValidated(id, status, by string, at time.Time) error {
	d, ok := r.s.adjustments[id]
	if !ok {
		return domain.ErrNotFound
	}
	markValidatedHeader(&d.DocumentHeader, status, by, at)
	return nil
}

func (r *memAdjustmentRepo) UpdateStatus(id, status string) error {
	d, ok := r.s.adjustments[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.Status = status
	return nil
}

func (r *memAdjustmentRepo) Delete(id string) error {
	if _, ok := r.s.adjustments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.adjustments, id)
	return nil
}

func (r *memAdjustmentRepo) MaxDocumentNumber() (int64, error) {
	return maxNumber(func(yield func(string)) {
		for _, d := range r.s.adjustments {
			yield(d.DocumentNumber)
		}
	}), nil
}

func maxNumber(each func(yield func(string))) int64 {
	var max int64
	each(func(num string) {
		var n int64
		for _, c := range num {
			if c < '0' || c > '9' {
				return
			}
			n = n*10 + int64(c-'0')
		}
		if num != "" && n > max {
			max = n
		}
	})
	return max
}

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de test: store sembrado + casos de uso cableados contra él.
// ──────────────────────────────────────────────────────────────────────────────

type ledgerEnv struct {
	store     *memStore
	tx        *memTxRunner
	create    *ledger.CreateDocumentUseCase
	validate  *ledger.ValidateDocumentUseCase
	lifecycle *ledger.DocumentLifecycleUseCase
}

const (
	testActor      = "00000000-0000-0000-0000-0000000000aa"
	testWarehouse  = "00000000-0000-0000-0000-0000000000w1"
	testWarehouse2 = "00000000-0000-0000-0000-0000000000w2"
	testProduct    = "00000000-0000-0000-0000-0000000000p1"
	testProduct2   = "00000000-0000-0000-0000-0000000000p2"
)

func newLedgerEnv() *ledgerEnv {
	store := newMemStore()
	store.warehouses[testWarehouse] = &entity.Warehouse{ID: testWarehouse, Name: "Central", IsActive: true}
	store.warehouses[testWarehouse2] = &entity.Warehouse{ID: testWarehouse2, Name: "Norte", IsActive: true}
	store.products[testProduct] = &entity.Product{ID: testProduct, SKU: "SKU-1", Name: "Tornillo", IsActive: true}
	store.products[testProduct2] = &entity.Product{ID: testProduct2, SKU: "SKU-2", Name: "Tuerca", IsActive: true}

	tx := &memTxRunner{s: store}
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	repos := store.repos()
	return &ledgerEnv{
		store:     store,
		tx:        tx,
		create:    ledger.NewCreateDocumentUseCase(tx, repos.Products, &memWarehouseRepo{store}, nil, log),
		validate:  ledger.NewValidateDocumentUseCase(tx, nil, log),
		lifecycle: ledger.NewDocumentLifecycleUseCase(tx, nil, log),
	}
}

// seedStock deja un registro de inventario con el estado dado y sincroniza
// Product.Quantity como lo haría una recepción validada.
func (e *ledgerEnv) seedStock(productID, warehouseID string, onHand, reserved int64) {
	rec := &entity.InventoryRecord{
		ProductID:   productID,
		WarehouseID: warehouseID,
		OnHand:      onHand,
		Reserved:    reserved,
		Available:   onHand - reserved,
		UpdatedAt:   time.Now(),
	}
	e.store.inventory[invKey(productID, warehouseID, nil)] = rec
	e.store.products[productID].Quantity += onHand
}

func (e *ledgerEnv) record(productID, warehouseID string) *entity.InventoryRecord {
	if rec, ok := e.store.inventory[invKey(productID, warehouseID, nil)]; ok {
		return rec
	}
	return &entity.InventoryRecord{ProductID: productID, WarehouseID: warehouseID}
}
