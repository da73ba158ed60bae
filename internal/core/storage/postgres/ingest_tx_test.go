package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/salesboard-lab/project-salesboard/internal/sales"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestIngestTx_ResolveCreatesWhenAbsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := &Adapter{db: db}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(queryInsertCategory)).
		WithArgs("Gadgets").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectCommit()

	tx, err := adapter.BeginIngest(context.Background())
	require.NoError(t, err)

	id, err := tx.ResolveCategory(context.Background(), "Gadgets")
	require.NoError(t, err)
	require.EqualValues(t, 7, id)

	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestTx_ResolveFallsBackToExistingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := &Adapter{db: db}

	mock.ExpectBegin()
	// ON CONFLICT DO NOTHING yields no row for an existing business key; the
	// resolver then selects the existing id. The caller's attributes are
	// never written.
	mock.ExpectQuery(regexp.QuoteMeta(queryInsertCustomer)).
		WithArgs("C1", "Alice B", "alice.new@example.com", "9 Elm St").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta(querySelectCustomer)).
		WithArgs("C1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectRollback()

	tx, err := adapter.BeginIngest(context.Background())
	require.NoError(t, err)

	id, err := tx.ResolveCustomer(context.Background(), sales.Customer{
		CustomerID: "C1",
		Name:       "Alice B",
		Email:      "alice.new@example.com",
		Address:    "9 Elm St",
	})
	require.NoError(t, err)
	require.EqualValues(t, 42, id)

	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestTx_AppendOrderPopulatesID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := &Adapter{db: db}
	saleDate := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(queryInsertOrder)).
		WithArgs("1001", int64(1), int64(2), int64(3), saleDate, 2,
			decimal.RequireFromString("0.10"), decimal.RequireFromString("1.50"), "Credit Card").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectCommit()

	tx, err := adapter.BeginIngest(context.Background())
	require.NoError(t, err)

	order := &sales.Order{
		OrderID:       "1001",
		CustomerID:    1,
		ProductID:     2,
		RegionID:      3,
		DateOfSale:    saleDate,
		QuantitySold:  2,
		Discount:      decimal.RequireFromString("0.10"),
		ShippingCost:  decimal.RequireFromString("1.50"),
		PaymentMethod: "Credit Card",
	}
	require.NoError(t, tx.AppendOrder(context.Background(), order))
	require.EqualValues(t, 100, order.ID)

	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestTx_RecordScopeRecoversBatchAfterStatementError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := &Adapter{db: db}

	// A failed statement aborts the postgres transaction; rolling back to the
	// record savepoint must leave the batch usable for the next record.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(querySavepointRecord)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(queryInsertCategory)).
		WithArgs("Gadgets").
		WillReturnError(&pq.Error{Code: "22003"})
	mock.ExpectExec(regexp.QuoteMeta(queryRollbackToRecord)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(querySavepointRecord)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(queryInsertCategory)).
		WithArgs("Tools").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectExec(regexp.QuoteMeta(queryReleaseSavepointRecord)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	tx, err := adapter.BeginIngest(context.Background())
	require.NoError(t, err)

	require.NoError(t, tx.BeginRecord(context.Background()))
	_, err = tx.ResolveCategory(context.Background(), "Gadgets")
	require.Error(t, err)
	require.NoError(t, tx.RollbackRecord(context.Background()))

	require.NoError(t, tx.BeginRecord(context.Background()))
	id, err := tx.ResolveCategory(context.Background(), "Tools")
	require.NoError(t, err)
	require.EqualValues(t, 3, id)
	require.NoError(t, tx.CommitRecord(context.Background()))

	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestTx_ResolveFailureSurfacesError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := &Adapter{db: db}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(queryInsertRegion)).
		WithArgs("North").
		WillReturnError(context.DeadlineExceeded)
	mock.ExpectRollback()

	tx, err := adapter.BeginIngest(context.Background())
	require.NoError(t, err)

	_, err = tx.ResolveRegion(context.Background(), "North")
	require.Error(t, err)

	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())
}
