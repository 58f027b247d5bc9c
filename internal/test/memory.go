package test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/fulfillment/internal/domain/errors"
	"github.com/polkiloo/fulfillment/internal/domain/model"
	"github.com/polkiloo/fulfillment/internal/domain/repository"
)

// Operation names accepted by MemoryStore.FailOn.
const (
	OpCreateOrder    = "orders.create"
	OpUpdateOrder    = "orders.update_status"
	OpCreatePayment  = "payments.create"
	OpCreateShipment = "shipments.create"
	OpUpdateShipment = "shipments.update_status"
	OpReserve        = "inventory.reserve"
	OpRelease        = "inventory.release"
	OpAppendEvent    = "outbox.append"
)

type memState struct {
	users     map[int64]bool
	addresses map[int64]model.Address
	products  map[int64]model.Product
	stock     map[int64]model.StockRecord
	orders    map[int64]model.Order
	payments  map[int64]model.Payment
	shipments map[int64]model.Shipment
	outbox    []model.OutboxEvent
	claimed   map[int64]time.Time

	nextOrder    int64
	nextPayment  int64
	nextShipment int64
	nextEvent    int64
}

func newMemState() *memState {
	return &memState{
		users:     make(map[int64]bool),
		addresses: make(map[int64]model.Address),
		products:  make(map[int64]model.Product),
		stock:     make(map[int64]model.StockRecord),
		orders:    make(map[int64]model.Order),
		payments:  make(map[int64]model.Payment),
		shipments: make(map[int64]model.Shipment),
		claimed:   make(map[int64]time.Time),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.addresses {
		c.addresses[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.stock {
		c.stock[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = copyOrder(v)
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	for k, v := range s.shipments {
		c.shipments[k] = v
	}
	for k, v := range s.claimed {
		c.claimed[k] = v
	}
	c.outbox = append([]model.OutboxEvent(nil), s.outbox...)
	c.nextOrder, c.nextPayment, c.nextShipment, c.nextEvent = s.nextOrder, s.nextPayment, s.nextShipment, s.nextEvent
	return c
}

func copyOrder(o model.Order) model.Order {
	o.Lines = append([]model.OrderLine(nil), o.Lines...)
	return o
}

// MemoryStore is an in-memory UnitOfWork. Transactions run one at a time against a
// snapshot that replaces the committed state only when the callback succeeds.
type MemoryStore struct {
	mu        sync.Mutex
	state     *memState
	failures  map[string]error
	conflicts int
	attempts  int
}

var (
	_ repository.UnitOfWork = (*MemoryStore)(nil)
	_ repository.Factory    = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState(), failures: make(map[string]error)}
}

// WithinTransaction runs fn against a private snapshot and commits it on success.
func (s *MemoryStore) WithinTransaction(ctx context.Context, fn func(tx repository.Factory) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.attempts++
	snapshot := s.state.clone()
	if err := fn(&memFactory{st: snapshot, failures: s.failures}); err != nil {
		return err
	}
	if s.conflicts > 0 {
		s.conflicts--
		return domainErrors.ErrTransactionConflict
	}
	s.state = snapshot
	return nil
}

// FailOn makes the named operation return err inside transactions.
func (s *MemoryStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// ConflictNext aborts the next n commits with ErrTransactionConflict.
func (s *MemoryStore) ConflictNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflicts = n
}

// Attempts reports how many transactions were started.
func (s *MemoryStore) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func (s *MemoryStore) AddUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[id] = true
}

func (s *MemoryStore) AddAddress(id, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.addresses[id] = model.Address{ID: id, UserID: userID}
}

func (s *MemoryStore) AddProduct(id int64, name string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.products[id] = model.Product{ID: id, Name: name, Price: price}
}

// SetStock writes a stock record directly.
func (s *MemoryStore) SetStock(productID int64, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.stock[productID] = model.StockRecord{ProductID: productID, Quantity: qty, UpdatedAt: time.Now()}
}

// Stock returns the committed quantity, zero when no record exists.
func (s *MemoryStore) Stock(productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.stock[productID].Quantity
}

// HasStockRecord reports whether productID has a committed record.
func (s *MemoryStore) HasStockRecord(productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.stock[productID]
	return ok
}

func (s *MemoryStore) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.orders)
}

func (s *MemoryStore) PaymentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.payments)
}

func (s *MemoryStore) ShipmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.shipments)
}

// Events returns committed outbox events in insertion order.
func (s *MemoryStore) Events() []model.OutboxEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.OutboxEvent(nil), s.state.outbox...)
}

func (s *MemoryStore) committed() *memFactory {
	return &memFactory{store: s}
}

func (s *MemoryStore) Inventory() repository.InventoryRepository { return s.committed().Inventory() }
func (s *MemoryStore) Orders() repository.OrderRepository       { return s.committed().Orders() }
func (s *MemoryStore) Payments() repository.PaymentRepository   { return s.committed().Payments() }
func (s *MemoryStore) Shipments() repository.ShipmentRepository { return s.committed().Shipments() }
func (s *MemoryStore) Catalog() repository.CatalogRepository    { return s.committed().Catalog() }
func (s *MemoryStore) Outbox() repository.OutboxRepository      { return s.committed().Outbox() }

// memFactory binds repositories either to a transaction snapshot or, outside a
// transaction, to the committed state of store read under its lock.
type memFactory struct {
	st       *memState
	failures map[string]error
	store    *MemoryStore
}

func (f *memFactory) begin() (*memState, func()) {
	if f.store == nil {
		return f.st, func() {}
	}
	f.store.mu.Lock()
	return f.store.state, f.store.mu.Unlock
}

func (f *memFactory) fail(op string) error {
	if f.failures == nil {
		return nil
	}
	return f.failures[op]
}

func (f *memFactory) Inventory() repository.InventoryRepository { return &memInventory{f} }
func (f *memFactory) Orders() repository.OrderRepository       { return &memOrders{f} }
func (f *memFactory) Payments() repository.PaymentRepository   { return &memPayments{f} }
func (f *memFactory) Shipments() repository.ShipmentRepository { return &memShipments{f} }
func (f *memFactory) Catalog() repository.CatalogRepository    { return &memCatalog{f} }
func (f *memFactory) Outbox() repository.OutboxRepository      { return &memOutbox{f} }

type memInventory struct{ f *memFactory }

func (r *memInventory) TryReserve(_ context.Context, productID int64, qty int) error {
	st, done := r.f.begin()
	defer done()
	if err := r.f.fail(OpReserve); err != nil {
		return err
	}
	rec := st.stock[productID]
	if rec.Quantity < qty {
		return &domainErrors.StockError{ProductID: productID, Requested: qty, Available: rec.Quantity}
	}
	rec.Quantity -= qty
	rec.UpdatedAt = time.Now()
	st.stock[productID] = rec
	return nil
}

func (r *memInventory) Release(_ context.Context, productID int64, qty int) error {
	st, done := r.f.begin()
	defer done()
	if err := r.f.fail(OpRelease); err != nil {
		return err
	}
	if _, ok := st.products[productID]; !ok {
		return &domainErrors.ReferenceError{Kind: domainErrors.ReferenceProduct, ID: productID}
	}
	rec := st.stock[productID]
	rec.ProductID = productID
	rec.Quantity += qty
	rec.UpdatedAt = time.Now()
	st.stock[productID] = rec
	return nil
}

func (r *memInventory) write(st *memState, productID int64, qty func(current int) int) (*model.StockRecord, error) {
	if _, ok := st.products[productID]; !ok {
		return nil, &domainErrors.ReferenceError{Kind: domainErrors.ReferenceProduct, ID: productID}
	}
	rec := st.stock[productID]
	rec.ProductID = productID
	next := qty(rec.Quantity)
	if next < 0 || next > model.MaxQuantity {
		return nil, domainErrors.ErrInvalidQuantity
	}
	rec.Quantity = next
	rec.UpdatedAt = time.Now()
	st.stock[productID] = rec
	return &rec, nil
}

func (r *memInventory) SetAbsolute(_ context.Context, productID int64, qty int) (*model.StockRecord, error) {
	st, done := r.f.begin()
	defer done()
	return r.write(st, productID, func(int) int { return qty })
}

func (r *memInventory) Increase(_ context.Context, productID int64, qty int) (*model.StockRecord, error) {
	st, done := r.f.begin()
	defer done()
	return r.write(st, productID, func(current int) int { return current + qty })
}

func (r *memInventory) Create(_ context.Context, productID int64, qty int) (*model.StockRecord, error) {
	st, done := r.f.begin()
	defer done()
	if _, ok := st.stock[productID]; ok {
		return nil, domainErrors.ErrAlreadyExists
	}
	return r.write(st, productID, func(int) int { return qty })
}

func (r *memInventory) Get(_ context.Context, productID int64) (*model.StockRecord, error) {
	st, done := r.f.begin()
	defer done()
	rec, ok := st.stock[productID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &rec, nil
}

func (r *memInventory) ListLowStock(_ context.Context, threshold int) ([]model.StockRecord, error) {
	st, done := r.f.begin()
	defer done()
	var out []model.StockRecord
	for _, rec := range st.stock {
		if rec.Quantity <= threshold {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity < out[j].Quantity
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out, nil
}

type memOrders struct{ f *memFactory }

func (r *memOrders) Create(_ context.Context, order *model.Order) error {
	st, done := r.f.begin()
	defer done()
	if err := r.f.fail(OpCreateOrder); err != nil {
		return err
	}
	st.nextOrder++
	order.ID = st.nextOrder
	order.UpdatedAt = order.CreatedAt
	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
		order.Lines[i].LineID = int64(i + 1)
	}
	st.orders[order.ID] = copyOrder(*order)
	return nil
}

func (r *memOrders) Get(_ context.Context, id int64) (*model.Order, error) {
	st, done := r.f.begin()
	defer done()
	o, ok := st.orders[id]
	if !ok {
		return nil, domainErrors.ErrOrderNotFound
	}
	o = copyOrder(o)
	return &o, nil
}

func (r *memOrders) GetForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return r.Get(ctx, id)
}

func (r *memOrders) UpdateStatus(_ context.Context, id int64, status model.OrderStatus, updatedAt time.Time) error {
	st, done := r.f.begin()
	defer done()
	if err := r.f.fail(OpUpdateOrder); err != nil {
		return err
	}
	o, ok := st.orders[id]
	if !ok {
		return domainErrors.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	st.orders[id] = o
	return nil
}

func (r *memOrders) list(st *memState, match func(model.Order) bool) []model.Order {
	var out []model.Order
	for _, o := range st.orders {
		if match(o) {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *memOrders) ListByUser(_ context.Context, userID int64) ([]model.Order, error) {
	st, done := r.f.begin()
	defer done()
	return r.list(st, func(o model.Order) bool { return o.UserID == userID }), nil
}

func (r *memOrders) ListByStatus(_ context.Context, status model.OrderStatus) ([]model.Order, error) {
	st, done := r.f.begin()
	defer done()
	return r.list(st, func(o model.Order) bool { return o.Status == status }), nil
}

type memPayments struct{ f *memFactory }

func (r *memPayments) Create(_ context.Context, p *model.Payment) error {
	st, done := r.f.begin()
	defer done()
	if err := r.f.fail(OpCreatePayment); err != nil {
		return err
	}
	st.nextPayment++
	p.ID = st.nextPayment
	st.payments[p.ID] = *p
	return nil
}

func (r *memPayments) GetByOrder(_ context.Context, orderID int64) (*model.Payment, error) {
	st, done := r.f.begin()
	defer done()
	for _, p := range st.payments {
		if p.OrderID == orderID {
			return &p, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

type memShipments struct{ f *memFactory }

func (r *memShipments) Create(_ context.Context, s *model.Shipment) error {
	st, done := r.f.begin()
	defer done()
	if err := r.f.fail(OpCreateShipment); err != nil {
		return err
	}
	st.nextShipment++
	s.ID = st.nextShipment
	s.UpdatedAt = s.CreatedAt
	st.shipments[s.ID] = *s
	return nil
}

func (r *memShipments) GetByOrder(_ context.Context, orderID int64) (*model.Shipment, error) {
	st, done := r.f.begin()
	defer done()
	for _, s := range st.shipments {
		if s.OrderID == orderID {
			return &s, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (r *memShipments) UpdateStatus(_ context.Context, id int64, status model.ShipmentStatus) error {
	st, done := r.f.begin()
	defer done()
	if err := r.f.fail(OpUpdateShipment); err != nil {
		return err
	}
	s, ok := st.shipments[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	st.shipments[id] = s
	return nil
}

type memCatalog struct{ f *memFactory }

func (r *memCatalog) UserExists(_ context.Context, userID int64) (bool, error) {
	st, done := r.f.begin()
	defer done()
	return st.users[userID], nil
}

func (r *memCatalog) GetAddress(_ context.Context, addressID int64) (*model.Address, error) {
	st, done := r.f.begin()
	defer done()
	a, ok := st.addresses[addressID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &a, nil
}

func (r *memCatalog) GetProduct(_ context.Context, productID int64) (*model.Product, error) {
	st, done := r.f.begin()
	defer done()
	p, ok := st.products[productID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

type memOutbox struct{ f *memFactory }

func (r *memOutbox) Append(_ context.Context, e *model.OutboxEvent) error {
	st, done := r.f.begin()
	defer done()
	if err := r.f.fail(OpAppendEvent); err != nil {
		return err
	}
	st.nextEvent++
	e.ID = st.nextEvent
	st.outbox = append(st.outbox, *e)
	return nil
}

func (r *memOutbox) ClaimBatch(_ context.Context, limit int, lease time.Duration) ([]model.OutboxEvent, error) {
	st, done := r.f.begin()
	defer done()
	now := time.Now()
	var out []model.OutboxEvent
	held := make(map[int64]bool)
	for _, e := range st.outbox {
		if len(out) == limit {
			break
		}
		if e.PublishedAt != nil {
			continue
		}
		if at, ok := st.claimed[e.ID]; ok && now.Sub(at) < lease {
			held[e.AggregateID] = true
			continue
		}
		if held[e.AggregateID] {
			continue
		}
		st.claimed[e.ID] = now
		out = append(out, e)
	}
	return out, nil
}

func (r *memOutbox) MarkPublished(_ context.Context, id int64) error {
	st, done := r.f.begin()
	defer done()
	for i := range st.outbox {
		if st.outbox[i].ID == id {
			now := time.Now()
			st.outbox[i].PublishedAt = &now
			return nil
		}
	}
	return domainErrors.ErrNotFound
}
