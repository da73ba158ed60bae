package analytics

import (
	"context"
	"fmt"

	"github.com/salesboard-lab/project-salesboard/internal/core/storage"
	"github.com/salesboard-lab/project-salesboard/internal/sales"
	"golang.org/x/sync/errgroup"
)

// DefaultTopProductsLimit applies when the caller leaves limit unset.
const DefaultTopProductsLimit = 10

// Service is the aggregation engine: revenue, top products and customer
// analysis over the sales store. It is read-only and safe to run concurrently
// with ingestion.
type Service struct {
	store storage.AnalyticsStore
}

func NewService(store storage.AnalyticsStore) *Service {
	if store == nil {
		panic("analytics: store must not be nil")
	}
	return &Service{store: store}
}

func validateRange(r storage.DateRange) error {
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: startDate %s is after endDate %s",
			ErrInvalidRange,
			r.Start.Format(sales.DateLayout),
			r.End.Format(sales.DateLayout))
	}
	return nil
}

// Revenue computes SUM(quantitySold * unitPrice) over orders in range. With
// an empty groupBy it returns a single total (zero when nothing matches);
// otherwise one row per dimension value that has matching orders, ascending
// by name. Groups without orders are omitted, not materialized as zero.
func (s *Service) Revenue(ctx context.Context, r storage.DateRange, groupBy storage.GroupBy) (*RevenueResult, error) {
	if err := validateRange(r); err != nil {
		return nil, err
	}

	if groupBy == "" {
		total, err := s.store.TotalRevenue(ctx, r)
		if err != nil {
			return nil, err
		}
		return &RevenueResult{Total: total}, nil
	}

	groups, err := s.store.RevenueByDimension(ctx, r, groupBy)
	if err != nil {
		return nil, err
	}
	return &RevenueResult{Grouped: true, Groups: groups}, nil
}

// TopProducts returns at most f.Limit products ordered by total quantity
// sold descending, ties broken by ascending product name. Optional category
// and region filters are exact-match and ANDed with the date range.
func (s *Service) TopProducts(ctx context.Context, r storage.DateRange, f storage.TopProductsFilter) ([]storage.ProductQuantity, error) {
	if err := validateRange(r); err != nil {
		return nil, err
	}
	if f.Limit == 0 {
		f.Limit = DefaultTopProductsLimit
	}
	if f.Limit < 1 {
		return nil, fmt.Errorf("%w: limit must be >= 1, got %d", ErrInvalidRange, f.Limit)
	}
	return s.store.TopProducts(ctx, r, f)
}

// CustomerAnalysis computes distinct customers, order count and average order
// value for the range. The three sub-queries run concurrently and are not
// wrapped in a shared snapshot: under concurrent ingestion the numbers may
// reflect slightly different table states. Accepted trade-off; the queries
// are independent and individually consistent.
func (s *Service) CustomerAnalysis(ctx context.Context, r storage.DateRange) (*CustomerAnalysis, error) {
	if err := validateRange(r); err != nil {
		return nil, err
	}

	var result CustomerAnalysis
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.DistinctCustomerCount(ctx, r)
		result.TotalCustomers = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.OrderCount(ctx, r)
		result.TotalOrders = n
		return err
	})
	g.Go(func() error {
		avg, err := s.store.AverageOrderValue(ctx, r)
		result.AvgOrderValue = avg
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &result, nil
}
