package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Status is the lifecycle state of an order.
type Status string

const (
	// StatusPending is the initial status assigned at creation.
	StatusPending Status = "Pending"
	// StatusConfirmed is a terminal status set by an admin action.
	StatusConfirmed Status = "Confirmed"
	// StatusCancelled is a terminal status set by an admin action.
	StatusCancelled Status = "Cancelled"
)

// ParseStatus converts a string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return Status(s), nil
	}
	return "", errors.Errorf("unknown order status %q", s)
}

// CanTransition reports whether an order may move between the two statuses.
// The only legal transitions are Pending to Confirmed and Pending to
// Cancelled; terminal statuses admit no further changes.
func CanTransition(from, to Status) bool {
	return from == StatusPending && (to == StatusConfirmed || to == StatusCancelled)
}

// Item is a denormalized snapshot of a product at order time. Once written
// into an order it never changes, even if the underlying product is later
// edited or deleted.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity"`
}

// Order is a persisted customer order with server-computed pricing.
type Order struct {
	ID              string
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Items           []Item
	DiscountCode    string // empty when no code was applied
	Subtotal        int64
	Discount        int64
	Total           int64
	Status          Status
	CreatedAt       time.Time
}

// ShortRef returns the human-friendly short reference: the last four
// characters of the order id.
func (o *Order) ShortRef() string {
	if len(o.ID) <= 4 {
		return o.ID
	}
	return o.ID[len(o.ID)-4:]
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	// Transition atomically moves the order to the given status, returning
	// the updated order. It fails with ErrNotFound for unknown ids and with
	// an InvalidTransitionError when the order is already terminal.
	Transition(ctx context.Context, id string, to Status) (*Order, error)
}

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// ErrEmptyItems is returned when a submission carries no items.
var ErrEmptyItems = errors.New("items required")

// ValidationError indicates missing required customer fields.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field(s): %s", strings.Join(e.Fields, ", "))
}

// InvalidDiscountError indicates a submitted discount code that does not
// exist in the registry. Distinct from "no code supplied".
type InvalidDiscountError struct {
	Code string
}

func (e *InvalidDiscountError) Error() string {
	return fmt.Sprintf("invalid discount code %q", e.Code)
}

// InvalidTransitionError indicates an illegal status change attempt.
type InvalidTransitionError struct {
	ID   string
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order %s: cannot transition from %s to %s", e.ID, e.From, e.To)
}
