package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/salesboard-lab/project-salesboard/internal/core/storage"
	"github.com/salesboard-lab/project-salesboard/internal/sales"
)

// IngestTx implements storage.IngestTx over one database transaction. All
// dimension resolutions and fact appends of an ingestion batch share it, so
// a failed batch rolls back without leaving partial rows behind.
type IngestTx struct {
	tx *sql.Tx
}

// BeginIngest opens a write transaction for one ingestion batch.
func (a *Adapter) BeginIngest(ctx context.Context) (storage.IngestTx, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ingest transaction: %w", err)
	}
	return &IngestTx{tx: tx}, nil
}

// resolve runs the insert-on-conflict-do-nothing statement and falls back to
// a select by business key when the insert returned no row. Existing rows are
// returned untouched, whatever attributes the caller supplied.
func (t *IngestTx) resolve(ctx context.Context, insert string, sel string, key string, insertArgs ...interface{}) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, insert, insertArgs...).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to insert dimension row: %w", err)
	}

	if err := t.tx.QueryRowContext(ctx, sel, key).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to look up existing dimension row %q: %w", key, err)
	}
	return id, nil
}

func (t *IngestTx) ResolveCategory(ctx context.Context, name string) (int64, error) {
	return t.resolve(ctx, queryInsertCategory, querySelectCategory, name, name)
}

func (t *IngestTx) ResolveRegion(ctx context.Context, name string) (int64, error) {
	return t.resolve(ctx, queryInsertRegion, querySelectRegion, name, name)
}

func (t *IngestTx) ResolveCustomer(ctx context.Context, c sales.Customer) (int64, error) {
	return t.resolve(ctx, queryInsertCustomer, querySelectCustomer, c.CustomerID,
		c.CustomerID, c.Name, c.Email, c.Address)
}

func (t *IngestTx) ResolveProduct(ctx context.Context, p sales.Product) (int64, error) {
	return t.resolve(ctx, queryInsertProduct, querySelectProduct, p.ProductID,
		p.ProductID, p.Name, p.UnitPrice, p.CategoryID)
}

// AppendOrder inserts one fact row and populates o.ID from the database.
func (t *IngestTx) AppendOrder(ctx context.Context, o *sales.Order) error {
	err := t.tx.QueryRowContext(ctx, queryInsertOrder,
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
		return fmt.Errorf("failed to append order %q: %w", o.OrderID, err)
	}
	return nil
}

// BeginRecord opens a savepoint for one record. Postgres marks the whole
// transaction aborted after any statement error, so without the savepoint a
// single bad record would poison every later statement in the batch.
func (t *IngestTx) BeginRecord(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, querySavepointRecord); err != nil {
		return fmt.Errorf("failed to open record savepoint: %w", err)
	}
	return nil
}

func (t *IngestTx) CommitRecord(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, queryReleaseSavepointRecord); err != nil {
		return fmt.Errorf("failed to release record savepoint: %w", err)
	}
	return nil
}

func (t *IngestTx) RollbackRecord(ctx context.Context) error {
	if _, err := t.tx.ExecContext(ctx, queryRollbackToRecord); err != nil {
		return fmt.Errorf("failed to roll back record savepoint: %w", err)
	}
	return nil
}

func (t *IngestTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ingest transaction: %w", err)
	}
	return nil
}

func (t *IngestTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return fmt.Errorf("failed to roll back ingest transaction: %w", err)
	}
	return nil
}
