package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
)

// csvColumns are the required header names of a sales export, in their
// canonical order. The reader accepts any column order as long as all
// fifteen are present.
var csvColumns = []string{
	"OrderID", "ProductID", "CustomerID", "ProductName", "Category",
	"Region", "DateOfSale", "QuantitySold", "UnitPrice", "Discount",
	"ShippingCost", "PaymentMethod", "CustomerName", "CustomerEmail",
	"CustomerAddress",
}

// CSVSource is a RecordSource over a delimited text stream with a header row.
// Rows are read lazily, one per Next call.
type CSVSource struct {
	reader *csv.Reader
	index  map[string]int
}

// NewCSVSource wraps r and consumes its header row. Returns an error when the
// header is missing any required column.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("input is empty, expected a header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	var missing []string
	for _, name := range csvColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("header is missing required column(s) %v", missing)
	}

	return &CSVSource{reader: cr, index: index}, nil
}

// Next reads one row. Returns io.EOF after the last row.
func (s *CSVSource) Next() (*RawRecord, error) {
	row, err := s.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	get := func(name string) string { return row[s.index[name]] }
	return &RawRecord{
		OrderID:         get("OrderID"),
		ProductID:       get("ProductID"),
		CustomerID:      get("CustomerID"),
		ProductName:     get("ProductName"),
		Category:        get("Category"),
		Region:          get("Region"),
		DateOfSale:      get("DateOfSale"),
		QuantitySold:    get("QuantitySold"),
		UnitPrice:       get("UnitPrice"),
		Discount:        get("Discount"),
		ShippingCost:    get("ShippingCost"),
		PaymentMethod:   get("PaymentMethod"),
		CustomerName:    get("CustomerName"),
		CustomerEmail:   get("CustomerEmail"),
		CustomerAddress: get("CustomerAddress"),
	}, nil
}
