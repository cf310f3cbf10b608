package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/orgalife/storefront/internal/domain/discount"
	"github.com/orgalife/storefront/internal/domain/product"
)

// Notifier receives created orders for asynchronous delivery to an external
// messaging channel. Enqueue must never block and its outcome never affects
// order creation.
type Notifier interface {
	Enqueue(o Order)
}

// Service runs the order pipeline: validation, normalization against the
// catalog, pricing with discount codes, persistence, and notification
// dispatch.
type Service struct {
	products  product.Repository
	discounts discount.Registry
	orders    Repository
	notifier  Notifier

	now   func() time.Time
	newID func() string
}

// NewService creates an order Service with the required domain dependencies.
func NewService(
	products product.Repository,
	discounts discount.Registry,
	orders Repository,
	notifier Notifier,
) *Service {
	return &Service{
		products:  products,
		discounts: discounts,
		orders:    orders,
		notifier:  notifier,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Create validates the submission, normalizes its items against the live
// catalog, recomputes the total server-side, persists the order with status
// Pending, and enqueues a notification. The persisted order is returned
// synchronously; notification delivery never affects the result.
func (s *Service) Create(ctx context.Context, sub Submission) (*Order, error) {
	name := strings.TrimSpace(sub.CustomerName)
	phone := strings.TrimSpace(sub.CustomerPhone)
	address := strings.TrimSpace(sub.CustomerAddress)

	var missing []string
	if name == "" {
		missing = append(missing, "customerName")
	}
	if phone == "" {
		missing = append(missing, "customerPhone")
	}
	if address == "" {
		missing = append(missing, "customerAddress")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	if len(sub.Items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]string, len(sub.Items))
	for i, it := range sub.Items {
		ids[i] = it.ID
	}

	// Batch fetch; ids missing from the result take the client-supplied
	// fallback path during normalization.
	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	catalog := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		catalog[p.ID] = p
	}

	items := Normalize(sub.Items, catalog)

	var applied *discount.Discount
	code := strings.TrimSpace(sub.DiscountCode)
	if code != "" {
		d, err := s.discounts.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, discount.ErrNotFound) {
				return nil, &InvalidDiscountError{Code: code}
			}
			return nil, errors.Wrap(err, "find discount code")
		}
		applied = d
		code = d.Code // canonical spelling from the registry
	}

	quote := ComputeQuote(items, applied)

	o := &Order{
		ID:              s.newID(),
		CustomerName:    name,
		CustomerPhone:   phone,
		CustomerAddress: address,
		Items:           items,
		DiscountCode:    code,
		Subtotal:        quote.Subtotal,
		Discount:        quote.Discount,
		Total:           quote.Total,
		Status:          StatusPending,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	s.notifier.Enqueue(*o)

	return o, nil
}

// SetStatus applies an admin status transition. Unknown target statuses and
// transitions to Pending are rejected before hitting storage; the repository
// enforces the Pending-to-terminal rule atomically.
func (s *Service) SetStatus(ctx context.Context, id string, to Status) (*Order, error) {
	if !CanTransition(StatusPending, to) {
		return nil, &InvalidTransitionError{ID: id, From: StatusPending, To: to}
	}
	return s.orders.Transition(ctx, id, to)
}

// Get returns a single order by id.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns all orders, most recent first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}
