package postgres

import (
	"context"
	"fmt"

	"github.com/salesboard-lab/project-salesboard/internal/core/storage"
	"github.com/shopspring/decimal"
)

// TotalRevenue returns SUM(quantity_sold * unit_price) over orders in range.
func (a *Adapter) TotalRevenue(ctx context.Context, r storage.DateRange) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := a.stmts["total_revenue"].QueryRowContext(ctx, r.Start, r.End).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query total revenue: %w", err)
	}
	return total, nil
}

// RevenueByDimension returns grouped revenue ordered ascending by group name.
func (a *Adapter) RevenueByDimension(ctx context.Context, r storage.DateRange, g storage.GroupBy) ([]storage.GroupRevenue, error) {
	var stmtName string
	switch g {
	case storage.GroupByProduct:
		stmtName = "revenue_by_product"
	case storage.GroupByCategory:
		stmtName = "revenue_by_category"
	case storage.GroupByRegion:
		stmtName = "revenue_by_region"
	default:
		return nil, fmt.Errorf("unsupported revenue grouping %q", g)
	}

	rows, err := a.stmts[stmtName].QueryContext(ctx, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue by %s: %w", g, err)
	}
	defer rows.Close()

	var result []storage.GroupRevenue
	for rows.Next() {
		var gr storage.GroupRevenue
		if err := rows.Scan(&gr.Name, &gr.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan grouped revenue row: %w", err)
		}
		result = append(result, gr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grouped revenue rows: %w", err)
	}
	return result, nil
}

// TopProducts returns the best-selling products by total quantity, at most
// f.Limit rows, ties broken by product name.
func (a *Adapter) TopProducts(ctx context.Context, r storage.DateRange, f storage.TopProductsFilter) ([]storage.ProductQuantity, error) {
	rows, err := a.stmts["top_products"].QueryContext(ctx, r.Start, r.End, f.Category, f.Region, f.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	defer rows.Close()

	var result []storage.ProductQuantity
	for rows.Next() {
		var pq storage.ProductQuantity
		if err := rows.Scan(&pq.Name, &pq.TotalQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan top products row: %w", err)
		}
		result = append(result, pq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top products rows: %w", err)
	}
	return result, nil
}

// DistinctCustomerCount counts customers with at least one order in range.
func (a *Adapter) DistinctCustomerCount(ctx context.Context, r storage.DateRange) (int64, error) {
	var count int64
	if err := a.stmts["distinct_customers"].QueryRowContext(ctx, r.Start, r.End).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count distinct customers: %w", err)
	}
	return count, nil
}

// OrderCount counts orders in range.
func (a *Adapter) OrderCount(ctx context.Context, r storage.DateRange) (int64, error) {
	var count int64
	if err := a.stmts["order_count"].QueryRowContext(ctx, r.Start, r.End).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// AverageOrderValue returns AVG(quantity_sold * unit_price) over orders in range.
func (a *Adapter) AverageOrderValue(ctx context.Context, r storage.DateRange) (decimal.Decimal, error) {
	var avg decimal.Decimal
	if err := a.stmts["avg_order_value"].QueryRowContext(ctx, r.Start, r.End).Scan(&avg); err != nil {
		return decimal.Zero, fmt.Errorf("failed to query average order value: %w", err)
	}
	return avg, nil
}
