package storage

import (
	"context"
	"errors"
	"time"

	"github.com/salesboard-lab/project-salesboard/internal/sales"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a lookup by surrogate key matches no row.
var ErrNotFound = errors.New("record not found")

// ErrInvalidReference is returned when a write names a customer, product or
// region surrogate key that does not exist.
var ErrInvalidReference = errors.New("referenced entity does not exist")

// DateRange is the mandatory inclusive predicate applied to every analytics
// query: date_of_sale BETWEEN Start AND End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// GroupBy selects the dimension for grouped revenue queries.
type GroupBy string

const (
	GroupByProduct  GroupBy = "product"
	GroupByCategory GroupBy = "category"
	GroupByRegion   GroupBy = "region"
)

// GroupRevenue is one grouped-revenue result row.
type GroupRevenue struct {
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductQuantity is one top-products result row.
type ProductQuantity struct {
	Name          string `json:"name"`
	TotalQuantity int64  `json:"totalQuantity"`
}

// TopProductsFilter narrows the top-products query. Empty Category/Region
// means no filter on that dimension. Limit must be >= 1.
type TopProductsFilter struct {
	Category string
	Region   string
	Limit    int
}

// DimensionResolver resolves a dimension entity by its business key, creating
// it with the supplied attributes only when absent. Attributes of an existing
// row are never updated through this interface; on a repeat encounter the
// stored row wins and the caller's attributes are discarded.
type DimensionResolver interface {
	ResolveCategory(ctx context.Context, name string) (int64, error)
	ResolveRegion(ctx context.Context, name string) (int64, error)
	ResolveCustomer(ctx context.Context, c sales.Customer) (int64, error)
	ResolveProduct(ctx context.Context, p sales.Product) (int64, error)
}

// IngestTx is one transactional ingestion scope: dimension resolution plus
// fact appends, committed or rolled back as a unit.
type IngestTx interface {
	DimensionResolver

	// AppendOrder inserts one fact row and populates o.ID. Orders carry no
	// dedup key; appending the same external order id twice yields two rows.
	AppendOrder(ctx context.Context, o *sales.Order) error

	// BeginRecord opens a nested scope inside the batch. Best-effort
	// ingestion wraps each record in one so a record that fails at the
	// storage level can be undone without aborting the whole transaction
	// (SAVEPOINT on SQL stores).
	BeginRecord(ctx context.Context) error

	// CommitRecord closes the current record scope, keeping its writes.
	CommitRecord(ctx context.Context) error

	// RollbackRecord undoes every write since BeginRecord and leaves the
	// surrounding transaction usable.
	RollbackRecord(ctx context.Context) error

	Commit() error
	Rollback() error
}

// IngestStore opens transactional write scopes for the ingestion pipeline.
type IngestStore interface {
	BeginIngest(ctx context.Context) (IngestTx, error)
}

// OrderUpdate carries the mutable order fields for the management surface.
// Nil fields are left unchanged.
type OrderUpdate struct {
	QuantitySold  *int
	Discount      *decimal.Decimal
	ShippingCost  *decimal.Decimal
	PaymentMethod *string
}

// OrderStore is the thin order-management surface. It is separate from the
// ingestion write path: ingestion only ever appends.
type OrderStore interface {
	CreateOrder(ctx context.Context, o *sales.Order) error
	ListOrders(ctx context.Context) ([]*sales.Order, error)
	GetOrder(ctx context.Context, id int64) (*sales.Order, error)
	UpdateOrder(ctx context.Context, id int64, upd OrderUpdate) (*sales.Order, error)
}

// AnalyticsStore is the read path. All queries are scoped by an inclusive
// date range and join dimensions explicitly; implementations must not rely
// on lazily-loaded associations.
type AnalyticsStore interface {
	// TotalRevenue returns SUM(quantity_sold * unit_price) over matching
	// orders, decimal.Zero when nothing matches.
	TotalRevenue(ctx context.Context, r DateRange) (decimal.Decimal, error)

	// RevenueByDimension returns one row per distinct dimension name with at
	// least one matching order, ascending by name. Empty groups are omitted.
	RevenueByDimension(ctx context.Context, r DateRange, g GroupBy) ([]GroupRevenue, error)

	// TopProducts returns at most f.Limit products ordered by total quantity
	// descending, ties broken by ascending product name.
	TopProducts(ctx context.Context, r DateRange, f TopProductsFilter) ([]ProductQuantity, error)

	// DistinctCustomerCount counts customers with at least one order in range.
	DistinctCustomerCount(ctx context.Context, r DateRange) (int64, error)

	// OrderCount counts orders in range.
	OrderCount(ctx context.Context, r DateRange) (int64, error)

	// AverageOrderValue returns AVG(quantity_sold * unit_price) over orders
	// in range, decimal.Zero when nothing matches.
	AverageOrderValue(ctx context.Context, r DateRange) (decimal.Decimal, error)
}
