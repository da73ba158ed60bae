package storage

import (
	"context"
	"errors"
	"maps"
	"sort"
	"sync"

	"github.com/salesboard-lab/project-salesboard/internal/sales"
	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory implementation of IngestStore, OrderStore and
// AnalyticsStore. Useful for testing and development; it mirrors the postgres
// adapter's semantics, including upsert-without-update dimension resolution
// and duplicate fact rows on re-ingest.
type MemoryStore struct {
	mu sync.RWMutex

	categoriesByName map[string]*sales.Category
	categoriesByID   map[int64]*sales.Category
	regionsByName    map[string]*sales.Region
	regionsByID      map[int64]*sales.Region
	customersByKey   map[string]*sales.Customer
	customersByID    map[int64]*sales.Customer
	productsByKey    map[string]*sales.Product
	productsByID     map[int64]*sales.Product
	orders           []*sales.Order

	seq int64
}

// NewMemoryStore creates an empty in-memory sales store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		categoriesByName: make(map[string]*sales.Category),
		categoriesByID:   make(map[int64]*sales.Category),
		regionsByName:    make(map[string]*sales.Region),
		regionsByID:      make(map[int64]*sales.Region),
		customersByKey:   make(map[string]*sales.Customer),
		customersByID:    make(map[int64]*sales.Customer),
		productsByKey:    make(map[string]*sales.Product),
		productsByID:     make(map[int64]*sales.Product),
	}
}

func (m *MemoryStore) nextID() int64 {
	m.seq++
	return m.seq
}

// Counts reports how many rows each table holds. Intended for tests and
// development tooling.
type Counts struct {
	Categories int
	Regions    int
	Customers  int
	Products   int
	Orders     int
}

func (m *MemoryStore) Count() Counts {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Counts{
		Categories: len(m.categoriesByName),
		Regions:    len(m.regionsByName),
		Customers:  len(m.customersByKey),
		Products:   len(m.productsByKey),
		Orders:     len(m.orders),
	}
}

// CustomerByKey returns a copy of the customer with the given business key.
func (m *MemoryStore) CustomerByKey(customerID string) (sales.Customer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customersByKey[customerID]
	if !ok {
		return sales.Customer{}, false
	}
	return *c, true
}

// ProductByKey returns a copy of the product with the given business key.
func (m *MemoryStore) ProductByKey(productID string) (sales.Product, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.productsByKey[productID]
	if !ok {
		return sales.Product{}, false
	}
	return *p, true
}

// memoryIngestTx buffers dimension creations and fact appends until Commit,
// matching the postgres adapter's one-transaction-per-batch behavior.
type memoryIngestTx struct {
	store *MemoryStore
	done  bool

	categories map[string]*sales.Category
	regions    map[string]*sales.Region
	customers  map[string]*sales.Customer
	products   map[string]*sales.Product
	orders     []*sales.Order

	snapshot *txSnapshot
}

// txSnapshot captures the buffered state at BeginRecord so RollbackRecord can
// restore it, mirroring the postgres adapter's savepoints.
type txSnapshot struct {
	categories map[string]*sales.Category
	regions    map[string]*sales.Region
	customers  map[string]*sales.Customer
	products   map[string]*sales.Product
	orders     int
}

// BeginIngest opens a buffered write scope.
func (m *MemoryStore) BeginIngest(ctx context.Context) (IngestTx, error) {
	return &memoryIngestTx{
		store:      m,
		categories: make(map[string]*sales.Category),
		regions:    make(map[string]*sales.Region),
		customers:  make(map[string]*sales.Customer),
		products:   make(map[string]*sales.Product),
	}, nil
}

var errTxDone = errors.New("ingest transaction already finished")

func (t *memoryIngestTx) ResolveCategory(ctx context.Context, name string) (int64, error) {
	if t.done {
		return 0, errTxDone
	}
	if c, ok := t.categories[name]; ok {
		return c.ID, nil
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if c, ok := t.store.categoriesByName[name]; ok {
		return c.ID, nil
	}
	c := &sales.Category{ID: t.store.nextID(), Name: name}
	t.categories[name] = c
	return c.ID, nil
}

func (t *memoryIngestTx) ResolveRegion(ctx context.Context, name string) (int64, error) {
	if t.done {
		return 0, errTxDone
	}
	if r, ok := t.regions[name]; ok {
		return r.ID, nil
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if r, ok := t.store.regionsByName[name]; ok {
		return r.ID, nil
	}
	r := &sales.Region{ID: t.store.nextID(), Name: name}
	t.regions[name] = r
	return r.ID, nil
}

func (t *memoryIngestTx) ResolveCustomer(ctx context.Context, c sales.Customer) (int64, error) {
	if t.done {
		return 0, errTxDone
	}
	if existing, ok := t.customers[c.CustomerID]; ok {
		return existing.ID, nil
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if existing, ok := t.store.customersByKey[c.CustomerID]; ok {
		return existing.ID, nil
	}
	created := c
	created.ID = t.store.nextID()
	t.customers[c.CustomerID] = &created
	return created.ID, nil
}

func (t *memoryIngestTx) ResolveProduct(ctx context.Context, p sales.Product) (int64, error) {
	if t.done {
		return 0, errTxDone
	}
	if existing, ok := t.products[p.ProductID]; ok {
		return existing.ID, nil
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if existing, ok := t.store.productsByKey[p.ProductID]; ok {
		return existing.ID, nil
	}
	created := p
	created.ID = t.store.nextID()
	t.products[p.ProductID] = &created
	return created.ID, nil
}

func (t *memoryIngestTx) AppendOrder(ctx context.Context, o *sales.Order) error {
	if t.done {
		return errTxDone
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	cloned := *o
	cloned.ID = t.store.nextID()
	o.ID = cloned.ID
	t.orders = append(t.orders, &cloned)
	return nil
}

func (t *memoryIngestTx) BeginRecord(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.snapshot = &txSnapshot{
		categories: maps.Clone(t.categories),
		regions:    maps.Clone(t.regions),
		customers:  maps.Clone(t.customers),
		products:   maps.Clone(t.products),
		orders:     len(t.orders),
	}
	return nil
}

func (t *memoryIngestTx) CommitRecord(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.snapshot = nil
	return nil
}

func (t *memoryIngestTx) RollbackRecord(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	if t.snapshot == nil {
		return nil
	}
	t.categories = t.snapshot.categories
	t.regions = t.snapshot.regions
	t.customers = t.snapshot.customers
	t.products = t.snapshot.products
	t.orders = t.orders[:t.snapshot.orders]
	t.snapshot = nil
	return nil
}

func (t *memoryIngestTx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	// Another batch may have published the same business key since this one
	// buffered its creation. The first publisher wins; losing rows are
	// remapped onto the winner's surrogate key, matching the postgres path
	// where ON CONFLICT DO NOTHING and the select fallback resolve the race.
	remap := make(map[int64]int64)
	for _, c := range t.categories {
		if existing, ok := t.store.categoriesByName[c.Name]; ok {
			remap[c.ID] = existing.ID
			continue
		}
		t.store.categoriesByName[c.Name] = c
		t.store.categoriesByID[c.ID] = c
	}
	for _, r := range t.regions {
		if existing, ok := t.store.regionsByName[r.Name]; ok {
			remap[r.ID] = existing.ID
			continue
		}
		t.store.regionsByName[r.Name] = r
		t.store.regionsByID[r.ID] = r
	}
	for _, c := range t.customers {
		if existing, ok := t.store.customersByKey[c.CustomerID]; ok {
			remap[c.ID] = existing.ID
			continue
		}
		t.store.customersByKey[c.CustomerID] = c
		t.store.customersByID[c.ID] = c
	}
	for _, p := range t.products {
		if id, ok := remap[p.CategoryID]; ok {
			p.CategoryID = id
		}
		if existing, ok := t.store.productsByKey[p.ProductID]; ok {
			remap[p.ID] = existing.ID
			continue
		}
		t.store.productsByKey[p.ProductID] = p
		t.store.productsByID[p.ID] = p
	}
	for _, o := range t.orders {
		if id, ok := remap[o.CustomerID]; ok {
			o.CustomerID = id
		}
		if id, ok := remap[o.ProductID]; ok {
			o.ProductID = id
		}
		if id, ok := remap[o.RegionID]; ok {
			o.RegionID = id
		}
	}
	t.store.orders = append(t.store.orders, t.orders...)
	return nil
}

func (t *memoryIngestTx) Rollback() error {
	// Rollback after Commit is a no-op, like database/sql's ErrTxDone path.
	t.done = true
	return nil
}

// --- OrderStore ---

func (m *MemoryStore) CreateOrder(ctx context.Context, o *sales.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.customersByID[o.CustomerID]; !ok {
		return ErrInvalidReference
	}
	if _, ok := m.productsByID[o.ProductID]; !ok {
		return ErrInvalidReference
	}
	if _, ok := m.regionsByID[o.RegionID]; !ok {
		return ErrInvalidReference
	}

	cloned := *o
	cloned.ID = m.nextID()
	o.ID = cloned.ID
	m.orders = append(m.orders, &cloned)
	return nil
}

func (m *MemoryStore) ListOrders(ctx context.Context) ([]*sales.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*sales.Order, 0, len(m.orders))
	for _, o := range m.orders {
		cloned := *o
		result = append(result, &cloned)
	}
	return result, nil
}

func (m *MemoryStore) GetOrder(ctx context.Context, id int64) (*sales.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, o := range m.orders {
		if o.ID == id {
			cloned := *o
			return &cloned, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateOrder(ctx context.Context, id int64, upd OrderUpdate) (*sales.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range m.orders {
		if o.ID != id {
			continue
		}
		if upd.QuantitySold != nil {
			o.QuantitySold = *upd.QuantitySold
		}
		if upd.Discount != nil {
			o.Discount = *upd.Discount
		}
		if upd.ShippingCost != nil {
			o.ShippingCost = *upd.ShippingCost
		}
		if upd.PaymentMethod != nil {
			o.PaymentMethod = *upd.PaymentMethod
		}
		cloned := *o
		return &cloned, nil
	}
	return nil, ErrNotFound
}

// --- AnalyticsStore ---

func inRange(r DateRange, o *sales.Order) bool {
	return !o.DateOfSale.Before(r.Start) && !o.DateOfSale.After(r.End)
}

func (m *MemoryStore) orderValue(o *sales.Order) decimal.Decimal {
	p := m.productsByID[o.ProductID]
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(o.QuantitySold)))
}

func (m *MemoryStore) TotalRevenue(ctx context.Context, r DateRange) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := decimal.Zero
	for _, o := range m.orders {
		if inRange(r, o) {
			total = total.Add(m.orderValue(o))
		}
	}
	return total, nil
}

func (m *MemoryStore) RevenueByDimension(ctx context.Context, r DateRange, g GroupBy) ([]GroupRevenue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	groups := make(map[string]decimal.Decimal)
	for _, o := range m.orders {
		if !inRange(r, o) {
			continue
		}
		var name string
		switch g {
		case GroupByProduct:
			name = m.productsByID[o.ProductID].Name
		case GroupByCategory:
			name = m.categoriesByID[m.productsByID[o.ProductID].CategoryID].Name
		case GroupByRegion:
			name = m.regionsByID[o.RegionID].Name
		default:
			return nil, errors.New("unsupported revenue grouping")
		}
		groups[name] = groups[name].Add(m.orderValue(o))
	}

	result := make([]GroupRevenue, 0, len(groups))
	for name, revenue := range groups {
		result = append(result, GroupRevenue{Name: name, Revenue: revenue})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}

func (m *MemoryStore) TopProducts(ctx context.Context, r DateRange, f TopProductsFilter) ([]ProductQuantity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	totals := make(map[string]int64)
	for _, o := range m.orders {
		if !inRange(r, o) {
			continue
		}
		p := m.productsByID[o.ProductID]
		if f.Category != "" && m.categoriesByID[p.CategoryID].Name != f.Category {
			continue
		}
		if f.Region != "" && m.regionsByID[o.RegionID].Name != f.Region {
			continue
		}
		totals[p.Name] += int64(o.QuantitySold)
	}

	result := make([]ProductQuantity, 0, len(totals))
	for name, qty := range totals {
		result = append(result, ProductQuantity{Name: name, TotalQuantity: qty})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalQuantity != result[j].TotalQuantity {
			return result[i].TotalQuantity > result[j].TotalQuantity
		}
		return result[i].Name < result[j].Name
	})
	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	if len(result) == 0 {
		return nil, nil
	}
	return result, nil
}

func (m *MemoryStore) DistinctCustomerCount(ctx context.Context, r DateRange) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[int64]struct{})
	for _, o := range m.orders {
		if inRange(r, o) {
			seen[o.CustomerID] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

func (m *MemoryStore) OrderCount(ctx context.Context, r DateRange) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, o := range m.orders {
		if inRange(r, o) {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) AverageOrderValue(ctx context.Context, r DateRange) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := decimal.Zero
	var count int64
	for _, o := range m.orders {
		if inRange(r, o) {
			total = total.Add(m.orderValue(o))
			count++
		}
	}
	if count == 0 {
		return decimal.Zero, nil
	}
	return total.Div(decimal.NewFromInt(count)), nil
}
