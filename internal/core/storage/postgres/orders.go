package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/salesboard-lab/project-salesboard/internal/core/storage"
	"github.com/salesboard-lab/project-salesboard/internal/sales"
)

// pgForeignKeyViolation is the postgres error code for a failed FK check.
const pgForeignKeyViolation = "23503"

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row scanner) (*sales.Order, error) {
	var o sales.Order
	err := row.Scan(
		&o.ID,
		&o.OrderID,
		&o.CustomerID,
		&o.ProductID,
		&o.RegionID,
		&o.DateOfSale,
		&o.QuantitySold,
		&o.Discount,
		&o.ShippingCost,
		&o.PaymentMethod,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan order row: %w", err)
	}
	return &o, nil
}

// CreateOrder inserts one order outside the ingestion path, for the
// management surface. The caller supplies resolved dimension surrogate keys.
func (a *Adapter) CreateOrder(ctx context.Context, o *sales.Order) error {
	err := a.db.QueryRowContext(ctx, queryInsertOrder,
		o.OrderID,
		o.CustomerID,
		o.ProductID,
		o.RegionID,
		o.DateOfSale,
		o.QuantitySold,
		o.Discount,
		o.ShippingCost,
		o.PaymentMethod,
	).Scan(&o.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("order %q: %w", o.OrderID, storage.ErrInvalidReference)
		}
		return fmt.Errorf("failed to create order %q: %w", o.OrderID, err)
	}
	return nil
}

// ListOrders returns all orders in surrogate-key order.
func (a *Adapter) ListOrders(ctx context.Context) ([]*sales.Order, error) {
	rows, err := a.db.QueryContext(ctx, queryListOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*sales.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}
	return orders, nil
}

// GetOrder fetches one order by surrogate key.
func (a *Adapter) GetOrder(ctx context.Context, id int64) (*sales.Order, error) {
	o, err := scanOrder(a.db.QueryRowContext(ctx, querySelectOrder, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

// UpdateOrder applies the non-nil fields of upd to one order and returns the
// updated row. Ingested fact rows are immutable from the analytics core's
// perspective; this mutation path exists only for the management surface.
func (a *Adapter) UpdateOrder(ctx context.Context, id int64, upd storage.OrderUpdate) (*sales.Order, error) {
	var (
		sets []string
		args []interface{}
	)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.QuantitySold != nil {
		add("quantity_sold", *upd.QuantitySold)
	}
	if upd.Discount != nil {
		add("discount", *upd.Discount)
	}
	if upd.ShippingCost != nil {
		add("shipping_cost", *upd.ShippingCost)
	}
	if upd.PaymentMethod != nil {
		add("payment_method", *upd.PaymentMethod)
	}

	if len(sets) > 0 {
		args = append(args, id)
		query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
		res, err := a.db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update order %d: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to read update result for order %d: %w", id, err)
		}
		if affected == 0 {
			return nil, storage.ErrNotFound
		}
	}

	return a.GetOrder(ctx, id)
}
