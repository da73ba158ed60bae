package analytics

import (
	"errors"

	"github.com/salesboard-lab/project-salesboard/internal/core/storage"
	"github.com/shopspring/decimal"
)

// ErrInvalidRange rejects a query whose startDate is after its endDate, or
// whose limit is below 1. Raised before any storage access.
var ErrInvalidRange = errors.New("invalid query range")

// RevenueResult is either a single total (ungrouped) or one row per
// dimension value (grouped); Grouped tells the caller which.
type RevenueResult struct {
	Grouped bool
	Total   decimal.Decimal
	Groups  []storage.GroupRevenue
}

// CustomerAnalysis holds the three customer metrics for a date range.
type CustomerAnalysis struct {
	TotalCustomers int64           `json:"totalCustomers"`
	TotalOrders    int64           `json:"totalOrders"`
	AvgOrderValue  decimal.Decimal `json:"avgOrderValue"`
}
