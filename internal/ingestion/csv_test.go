package ingestion

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const csvHeader = "OrderID,ProductID,CustomerID,ProductName,Category,Region,DateOfSale,QuantitySold,UnitPrice,Discount,ShippingCost,PaymentMethod,CustomerName,CustomerEmail,CustomerAddress"

func TestCSVSource_ReadsRecords(t *testing.T) {
	input := csvHeader + "\n" +
		"1001,P1,C1,Widget,Gadgets,North,2024-01-05,2,10.00,0.00,1.50,Credit Card,Alice,alice@example.com,1 Main St\n" +
		"1002,P2,C2,Sprocket,Gadgets,South,2024-02-01,1,5.00,0.10,2.00,PayPal,Bob,bob@example.com,2 Oak Ave\n"

	src, err := NewCSVSource(strings.NewReader(input))
	require.NoError(t, err)

	first, err := src.Next()
	require.NoError(t, err)
	require.Equal(t, "1001", first.OrderID)
	require.Equal(t, "Widget", first.ProductName)
	require.Equal(t, "2024-01-05", first.DateOfSale)
	require.Equal(t, "10.00", first.UnitPrice)

	second, err := src.Next()
	require.NoError(t, err)
	require.Equal(t, "Sprocket", second.ProductName)

	_, err = src.Next()
	require.Equal(t, io.EOF, err)
}

func TestCSVSource_AcceptsReorderedColumns(t *testing.T) {
	input := "Region,OrderID,ProductID,CustomerID,ProductName,Category,DateOfSale,QuantitySold,UnitPrice,Discount,ShippingCost,PaymentMethod,CustomerName,CustomerEmail,CustomerAddress\n" +
		"West,1001,P1,C1,Widget,Gadgets,2024-01-05,2,10.00,0.00,1.50,Credit Card,Alice,alice@example.com,1 Main St\n"

	src, err := NewCSVSource(strings.NewReader(input))
	require.NoError(t, err)

	rec, err := src.Next()
	require.NoError(t, err)
	require.Equal(t, "West", rec.Region)
	require.Equal(t, "1001", rec.OrderID)
}

func TestCSVSource_MissingColumn(t *testing.T) {
	input := "OrderID,ProductID\n1001,P1\n"
	_, err := NewCSVSource(strings.NewReader(input))
	require.Error(t, err)
	require.Contains(t, err.Error(), "CustomerID")
}

func TestCSVSource_EmptyInput(t *testing.T) {
	_, err := NewCSVSource(strings.NewReader(""))
	require.Error(t, err)
}
