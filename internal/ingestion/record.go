package ingestion

// RawRecord is one unparsed transaction row from a sales export. All fields
// arrive as strings; the pipeline coerces the numeric and date fields and
// fails the record explicitly when a value cannot be parsed.
type RawRecord struct {
	OrderID         string
	ProductID       string
	CustomerID      string
	ProductName     string
	Category        string
	Region          string
	DateOfSale      string
	QuantitySold    string
	UnitPrice       string
	Discount        string
	ShippingCost    string
	PaymentMethod   string
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
}

// RecordSource produces a lazy, finite sequence of raw records. Next returns
// io.EOF after the last record. Implementations must be safe to abandon
// part-way through (the pipeline stops reading on batch failure).
type RecordSource interface {
	Next() (*RawRecord, error)
}
