package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used everywhere in the API and the
// ingestion input (Postgres DATE semantics, no time-of-day component).
const DateLayout = "2006-01-02"

// Category is a product grouping dimension. The name is the business key and
// is globally unique.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Region is a sales-territory dimension. The name is the business key and is
// globally unique.
type Region struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Customer is a dimension entity resolved by its external customer id.
// Descriptive attributes (name, email, address) are set at creation time and
// never overwritten: a later record carrying a changed email for the same
// customer id reuses the stored row unchanged.
type Customer struct {
	ID         int64  `json:"id"`
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
}

// Product is a dimension entity resolved by its external product id.
// UnitPrice is fixed at creation time; revenue is always computed from the
// stored product price, not from per-order prices.
type Product struct {
	ID         int64           `json:"id"`
	ProductID  string          `json:"product_id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CategoryID int64           `json:"category_id"`
}

// Order is the fact row: one ingested transaction referencing exactly one
// customer, product and region. OrderID is the external identifier from the
// source file; it carries no uniqueness constraint, so re-ingesting the same
// file appends duplicate fact rows. That is deliberate source behavior, not
// a missing constraint.
type Order struct {
	ID            int64           `json:"id"`
	OrderID       string          `json:"order_id"`
	CustomerID    int64           `json:"customer_id"`
	ProductID     int64           `json:"product_id"`
	RegionID      int64           `json:"region_id"`
	DateOfSale    time.Time       `json:"date_of_sale"`
	QuantitySold  int             `json:"quantity_sold"`
	Discount      decimal.Decimal `json:"discount"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	PaymentMethod string          `json:"payment_method"`
}
