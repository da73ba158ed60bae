package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/salesboard-lab/project-salesboard/internal/core/storage"
	"github.com/salesboard-lab/project-salesboard/internal/sales"
	"github.com/shopspring/decimal"
)

// Mode selects the batch failure policy.
type Mode string

const (
	// ModeAtomic is the default: any record failure rolls back the whole
	// batch and is surfaced with the failing row number.
	ModeAtomic Mode = "atomic"

	// ModeBestEffort skips failing records, reports them in the Result, and
	// commits the rest.
	ModeBestEffort Mode = "best_effort"
)

// RowFailure describes one skipped record in a best-effort run.
type RowFailure struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Result summarizes one ingestion run.
type Result struct {
	RunID   uuid.UUID    `json:"run_id"`
	Records int          `json:"records"`
	Skipped []RowFailure `json:"skipped,omitempty"`
}

// Service drives the ingestion pipeline: parse each raw record, resolve or
// create its dimension entities, append one fact row. The whole batch shares
// one storage transaction.
type Service struct {
	store           storage.IngestStore
	maxUploadSizeMB int
	defaultMode     Mode
}

func NewService(store storage.IngestStore, maxUploadSizeMB int, defaultMode Mode) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = 32
	}
	if defaultMode == "" {
		defaultMode = ModeAtomic
	}
	return &Service{store: store, maxUploadSizeMB: maxUploadSizeMB, defaultMode: defaultMode}
}

// runCache holds business key -> surrogate key resolutions for one run, so a
// dimension seen on many rows costs one storage round trip. Dimensions are
// immutable after creation, so entries never go stale; the cache is discarded
// at run end.
type runCache struct {
	categories map[string]int64
	regions    map[string]int64
	customers  map[string]int64
	products   map[string]int64
}

func newRunCache() *runCache {
	return &runCache{
		categories: make(map[string]int64),
		regions:    make(map[string]int64),
		customers:  make(map[string]int64),
		products:   make(map[string]int64),
	}
}

// Ingest consumes the source to exhaustion and commits the batch. In atomic
// mode the first failing record aborts and rolls back the run; in best-effort
// mode failing records are skipped and reported in the Result. Cancellation
// is honored between records and rolls back the open transaction.
func (s *Service) Ingest(ctx context.Context, src RecordSource, mode Mode) (*Result, error) {
	if mode == "" {
		mode = ModeAtomic
	}

	result := &Result{RunID: uuid.New()}
	slog.Info("Ingestion run started", "run_id", result.RunID, "mode", mode)

	tx, err := s.store.BeginIngest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start ingestion run: %w", err)
	}

	cache := newRunCache()
	row := 0
	for {
		if err := ctx.Err(); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("ingestion run cancelled after row %d: %w", row, err)
		}

		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			if mode == ModeBestEffort {
				result.Skipped = append(result.Skipped, RowFailure{Row: row, Reason: err.Error()})
				slog.Warn("Skipped unreadable row", "run_id", result.RunID, "row", row, "error", err)
				continue
			}
			tx.Rollback()
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		// A record that fails at the storage level aborts the surrounding SQL
		// transaction, so in best-effort mode each record runs inside its own
		// savepoint scope and failures roll back to it.
		if mode == ModeBestEffort {
			if err := tx.BeginRecord(ctx); err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("failed to open record scope at row %d: %w", row, err)
			}
		}

		if err := s.ingestRecord(ctx, tx, cache, row, rec); err != nil {
			if mode == ModeBestEffort {
				if rbErr := tx.RollbackRecord(ctx); rbErr != nil {
					tx.Rollback()
					return nil, fmt.Errorf("failed to roll back record scope at row %d: %w", row, rbErr)
				}
				result.Skipped = append(result.Skipped, RowFailure{Row: row, Reason: err.Error()})
				slog.Warn("Skipped failing record", "run_id", result.RunID, "row", row, "error", err)
				continue
			}
			tx.Rollback()
			return nil, err
		}

		if mode == ModeBestEffort {
			if err := tx.CommitRecord(ctx); err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("failed to close record scope at row %d: %w", row, err)
			}
		}
		result.Records++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ingestion run: %w", err)
	}

	slog.Info("Ingestion run completed",
		"run_id", result.RunID,
		"records", result.Records,
		"skipped", len(result.Skipped))
	return result, nil
}

// stagedResolution is a cache entry held back until the whole record lands.
// If the record's scope is rolled back, its dimension rows are gone and
// caching their surrogate keys would poison later rows.
type stagedResolution struct {
	entries map[string]int64
	key     string
	id      int64
}

// ingestRecord processes one raw record: coerce scalars, resolve the four
// dimensions, append the fact row. Scalars are parsed up front so a malformed
// record creates no dimension rows.
func (s *Service) ingestRecord(ctx context.Context, tx storage.IngestTx, cache *runCache, row int, rec *RawRecord) error {
	quantity, err := parseQuantity(row, "QuantitySold", rec.QuantitySold)
	if err != nil {
		return err
	}
	unitPrice, err := parseDecimal(row, "UnitPrice", rec.UnitPrice)
	if err != nil {
		return err
	}
	discount, err := parseDecimal(row, "Discount", rec.Discount)
	if err != nil {
		return err
	}
	shippingCost, err := parseDecimal(row, "ShippingCost", rec.ShippingCost)
	if err != nil {
		return err
	}
	dateOfSale, err := parseDate(row, "DateOfSale", rec.DateOfSale)
	if err != nil {
		return err
	}

	var staged []stagedResolution

	categoryID, ok := cache.categories[rec.Category]
	if !ok {
		categoryID, err = tx.ResolveCategory(ctx, rec.Category)
		if err != nil {
			return &ResolveError{Row: row, Kind: "category", Key: rec.Category, Err: err}
		}
		staged = append(staged, stagedResolution{cache.categories, rec.Category, categoryID})
	}

	regionID, ok := cache.regions[rec.Region]
	if !ok {
		regionID, err = tx.ResolveRegion(ctx, rec.Region)
		if err != nil {
			return &ResolveError{Row: row, Kind: "region", Key: rec.Region, Err: err}
		}
		staged = append(staged, stagedResolution{cache.regions, rec.Region, regionID})
	}

	customerID, ok := cache.customers[rec.CustomerID]
	if !ok {
		customerID, err = tx.ResolveCustomer(ctx, sales.Customer{
			CustomerID: rec.CustomerID,
			Name:       rec.CustomerName,
			Email:      rec.CustomerEmail,
			Address:    rec.CustomerAddress,
		})
		if err != nil {
			return &ResolveError{Row: row, Kind: "customer", Key: rec.CustomerID, Err: err}
		}
		staged = append(staged, stagedResolution{cache.customers, rec.CustomerID, customerID})
	}

	productID, ok := cache.products[rec.ProductID]
	if !ok {
		productID, err = tx.ResolveProduct(ctx, sales.Product{
			ProductID:  rec.ProductID,
			Name:       rec.ProductName,
			UnitPrice:  unitPrice,
			CategoryID: categoryID,
		})
		if err != nil {
			return &ResolveError{Row: row, Kind: "product", Key: rec.ProductID, Err: err}
		}
		staged = append(staged, stagedResolution{cache.products, rec.ProductID, productID})
	}

	order := &sales.Order{
		OrderID:       rec.OrderID,
		CustomerID:    customerID,
		ProductID:     productID,
		RegionID:      regionID,
		DateOfSale:    dateOfSale,
		QuantitySold:  quantity,
		Discount:      discount,
		ShippingCost:  shippingCost,
		PaymentMethod: rec.PaymentMethod,
	}
	if err := tx.AppendOrder(ctx, order); err != nil {
		return &ResolveError{Row: row, Kind: "order", Key: rec.OrderID, Err: err}
	}

	for _, r := range staged {
		r.entries[r.key] = r.id
	}
	return nil
}

func parseQuantity(row int, field, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &FieldParseError{Row: row, Field: field, Value: value, Err: err}
	}
	if n < 0 {
		return 0, &FieldParseError{Row: row, Field: field, Value: value, Err: fmt.Errorf("must be >= 0")}
	}
	return n, nil
}

func parseDecimal(row int, field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, &FieldParseError{Row: row, Field: field, Value: value, Err: err}
	}
	return d, nil
}

func parseDate(row int, field, value string) (time.Time, error) {
	t, err := time.Parse(sales.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &FieldParseError{Row: row, Field: field, Value: value, Err: err}
	}
	return t, nil
}
