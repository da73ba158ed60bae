package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/salesboard-lab/project-salesboard/internal/core/storage"
	"github.com/salesboard-lab/project-salesboard/internal/sales"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_MapsForeignKeyViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := &Adapter{db: db}

	mock.ExpectQuery(regexp.QuoteMeta(queryInsertOrder)).
		WillReturnError(&pq.Error{Code: pgForeignKeyViolation})

	order := &sales.Order{
		OrderID:       "1001",
		CustomerID:    999,
		ProductID:     1,
		RegionID:      1,
		DateOfSale:    time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		QuantitySold:  1,
		PaymentMethod: "Credit Card",
	}
	err = adapter.CreateOrder(context.Background(), order)
	require.ErrorIs(t, err, storage.ErrInvalidReference)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrder_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := &Adapter{db: db}

	mock.ExpectQuery(regexp.QuoteMeta(querySelectOrder)).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "customer_id", "product_id", "region_id",
			"date_of_sale", "quantity_sold", "discount", "shipping_cost", "payment_method",
		}))

	_, err = adapter.GetOrder(context.Background(), 404)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrder_BuildsSetClauseFromProvidedFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := &Adapter{db: db}
	saleDate := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	qty := 5
	method := "PayPal"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET quantity_sold = $1, payment_method = $2 WHERE id = $3")).
		WithArgs(qty, method, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(querySelectOrder)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "order_id", "customer_id", "product_id", "region_id",
			"date_of_sale", "quantity_sold", "discount", "shipping_cost", "payment_method",
		}).AddRow(int64(7), "1001", int64(1), int64(2), int64(3),
			saleDate, qty, "0.00", "0.00", method))

	updated, err := adapter.UpdateOrder(context.Background(), 7, storage.OrderUpdate{
		QuantitySold:  &qty,
		PaymentMethod: &method,
	})
	require.NoError(t, err)
	require.Equal(t, 5, updated.QuantitySold)
	require.Equal(t, "PayPal", updated.PaymentMethod)
	require.True(t, updated.Discount.Equal(decimal.Zero))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrder_NoRowsAffectedIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	adapter := &Adapter{db: db}
	qty := 5

	mock.ExpectExec("UPDATE orders SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = adapter.UpdateOrder(context.Background(), 404, storage.OrderUpdate{QuantitySold: &qty})
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
