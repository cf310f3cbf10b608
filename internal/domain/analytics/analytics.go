package analytics

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/orgalife/storefront/internal/domain/order"
)

// ClickStore persists per-product view counters.
type ClickStore interface {
	Increment(ctx context.Context, productID string) error
	Totals(ctx context.Context) (map[string]int64, error)
}

// Summary aggregates order and customer statistics.
type Summary struct {
	TotalOrders        int
	TotalCustomers     int
	ReturningCustomers int
	ProductClicks      map[string]int64
}

// Retention breaks customers down by repeat behaviour. A returning customer
// is a distinct phone number appearing in more than one order.
type Retention struct {
	TotalCustomers     int
	NewCustomers       int
	ReturningCustomers int
}

// Sales aggregates revenue and order counts by status. Revenue counts
// non-cancelled orders.
type Sales struct {
	TotalRevenue    int64
	PendingOrders   int
	ConfirmedOrders int
	CancelledOrders int
}

// Service derives reporting statistics on demand by scanning all orders. No
// incremental maintenance at this scale.
type Service struct {
	clicks ClickStore
	orders order.Repository
	lg     *zap.Logger
}

// NewService creates an analytics Service.
func NewService(clicks ClickStore, orders order.Repository, lg *zap.Logger) *Service {
	return &Service{clicks: clicks, orders: orders, lg: lg}
}

// RecordView increments the view counter for a product. Store failures are
// logged and swallowed; view tracking must never break browsing.
func (s *Service) RecordView(ctx context.Context, productID string) {
	if err := s.clicks.Increment(ctx, productID); err != nil {
		s.lg.Warn("record product view failed",
			zap.String("product_id", productID),
			zap.Error(err),
		)
	}
}

// Summary recomputes the overall order and customer totals.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	byPhone := ordersPerPhone(orders)
	returning := 0
	for _, n := range byPhone {
		if n > 1 {
			returning++
		}
	}

	clicks, err := s.clicks.Totals(ctx)
	if err != nil {
		// Clicks are nice-to-have on the dashboard; report without them.
		s.lg.Warn("load product clicks failed", zap.Error(err))
		clicks = map[string]int64{}
	}

	return &Summary{
		TotalOrders:        len(orders),
		TotalCustomers:     len(byPhone),
		ReturningCustomers: returning,
		ProductClicks:      clicks,
	}, nil
}

// Retention recomputes the customer retention breakdown.
func (s *Service) Retention(ctx context.Context) (*Retention, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	byPhone := ordersPerPhone(orders)
	r := &Retention{TotalCustomers: len(byPhone)}
	for _, n := range byPhone {
		if n > 1 {
			r.ReturningCustomers++
		} else {
			r.NewCustomers++
		}
	}
	return r, nil
}

// Sales recomputes revenue and per-status order counts.
func (s *Service) Sales(ctx context.Context) (*Sales, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	sales := &Sales{}
	for _, o := range orders {
		switch o.Status {
		case order.StatusPending:
			sales.PendingOrders++
		case order.StatusConfirmed:
			sales.ConfirmedOrders++
		case order.StatusCancelled:
			sales.CancelledOrders++
		}
		if o.Status != order.StatusCancelled {
			sales.TotalRevenue += o.Total
		}
	}
	return sales, nil
}

func ordersPerPhone(orders []order.Order) map[string]int {
	byPhone := make(map[string]int, len(orders))
	for _, o := range orders {
		byPhone[o.CustomerPhone]++
	}
	return byPhone
}
