package discount

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a discount code does not exist in the registry.
var ErrNotFound = errors.New("discount code not found")

// DuplicateError indicates an attempt to register a code that already exists.
// Codes clash case-insensitively.
type DuplicateError struct {
	Code string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("discount code %q already exists", e.Code)
}

// InvalidPercentError indicates a discount percent outside the 1-100 range.
type InvalidPercentError struct {
	Percent int
}

func (e *InvalidPercentError) Error() string {
	return fmt.Sprintf("discount percent must be between 1 and 100, got %d", e.Percent)
}

// Discount is a named percentage discount code.
type Discount struct {
	Code    string
	Percent int
}

// Validate checks that the code is non-blank and the percent is within bounds.
func (d Discount) Validate() error {
	if strings.TrimSpace(d.Code) == "" {
		return errors.New("discount code is required")
	}
	if d.Percent < 1 || d.Percent > 100 {
		return &InvalidPercentError{Percent: d.Percent}
	}
	return nil
}

// Registry provides lookup and mutation of discount codes. Lookups and
// removals match case-insensitively; Add rejects case-insensitive duplicates
// with a DuplicateError.
type Registry interface {
	List(ctx context.Context) ([]Discount, error)
	FindByCode(ctx context.Context, code string) (*Discount, error)
	Add(ctx context.Context, d Discount) error
	Remove(ctx context.Context, code string) error
}
