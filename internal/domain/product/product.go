package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Prices are whole
// currency units.
type Product struct {
	ID             string
	Name           string
	Price          int64
	WholesalePrice int64
	Category       string
	Image          string // relative upload path or absolute URL
	Stock          int
	Description    string
	IsInSlider     bool
	CreatedAt      time.Time
}

// Update describes a partial update to a product. Nil fields are left
// unchanged.
type Update struct {
	Name           *string
	Price          *int64
	WholesalePrice *int64
	Category       *string
	Image          *string
	Stock          *int
	Description    *string
	IsInSlider     *bool
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, id string, upd Update) (*Product, error)
	Delete(ctx context.Context, id string) error
}
