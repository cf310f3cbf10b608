package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgalife/storefront/internal/domain/discount"
)

const (
	listDiscountsSQL = `SELECT code, percent FROM discounts ORDER BY code`

	getDiscountByCodeSQL = `SELECT code, percent FROM discounts WHERE UPPER(code) = UPPER($1)`

	addDiscountSQL = `INSERT INTO discounts (code, percent) VALUES ($1, $2)`

	removeDiscountSQL = `DELETE FROM discounts WHERE UPPER(code) = UPPER($1)`
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

var _ discount.Registry = (*DiscountRegistry)(nil)

// DiscountRegistry implements discount.Registry backed by PostgreSQL. The
// case-insensitive unique index on UPPER(code) makes duplicate detection
// race-free.
type DiscountRegistry struct {
	pool *pgxpool.Pool
}

// NewDiscountRegistry returns a DiscountRegistry that uses the given pool.
func NewDiscountRegistry(pool *pgxpool.Pool) *DiscountRegistry {
	return &DiscountRegistry{pool: pool}
}

// List returns all registered discount codes.
func (r *DiscountRegistry) List(ctx context.Context) ([]discount.Discount, error) {
	rows, err := r.pool.Query(ctx, listDiscountsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing discounts: %w", err)
	}
	return pgx.CollectRows(rows, scanDiscount)
}

// FindByCode looks up a discount code case-insensitively. Returns
// discount.ErrNotFound when no matching code exists.
func (r *DiscountRegistry) FindByCode(ctx context.Context, code string) (*discount.Discount, error) {
	rows, err := r.pool.Query(ctx, getDiscountByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding discount %q: %w", code, err)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDiscount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNotFound
		}
		return nil, fmt.Errorf("finding discount %q: %w", code, err)
	}
	return &d, nil
}

// Add registers a new discount code, rejecting case-insensitive duplicates
// with a DuplicateError.
func (r *DiscountRegistry) Add(ctx context.Context, d discount.Discount) error {
	if err := d.Validate(); err != nil {
		return err
	}

	if _, err := r.pool.Exec(ctx, addDiscountSQL, d.Code, d.Percent); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &discount.DuplicateError{Code: d.Code}
		}
		return fmt.Errorf("adding discount %q: %w", d.Code, err)
	}
	return nil
}

// Remove deletes a discount code case-insensitively.
func (r *DiscountRegistry) Remove(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, removeDiscountSQL, code)
	if err != nil {
		return fmt.Errorf("removing discount %q: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return discount.ErrNotFound
	}
	return nil
}

func scanDiscount(row pgx.CollectableRow) (discount.Discount, error) {
	var d discount.Discount
	err := row.Scan(&d.Code, &d.Percent)
	return d, err
}
