package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgalife/storefront/internal/domain/analytics"
)

const (
	incrementClickSQL = `INSERT INTO product_clicks (product_id, clicks) VALUES ($1, 1)
		ON CONFLICT (product_id) DO UPDATE SET clicks = product_clicks.clicks + 1`

	clickTotalsSQL = `SELECT product_id, clicks FROM product_clicks`
)

var _ analytics.ClickStore = (*ClickStore)(nil)

// ClickStore implements analytics.ClickStore backed by PostgreSQL.
type ClickStore struct {
	pool *pgxpool.Pool
}

// NewClickStore returns a ClickStore that uses the given pool.
func NewClickStore(pool *pgxpool.Pool) *ClickStore {
	return &ClickStore{pool: pool}
}

// Increment bumps the view counter for a product, creating it on first view.
func (s *ClickStore) Increment(ctx context.Context, productID string) error {
	if _, err := s.pool.Exec(ctx, incrementClickSQL, productID); err != nil {
		return fmt.Errorf("incrementing clicks for %q: %w", productID, err)
	}
	return nil
}

// Totals returns all per-product view counters.
func (s *ClickStore) Totals(ctx context.Context) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, clickTotalsSQL)
	if err != nil {
		return nil, fmt.Errorf("loading click totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var (
			id     string
			clicks int64
		)
		if err := rows.Scan(&id, &clicks); err != nil {
			return nil, fmt.Errorf("scanning click row: %w", err)
		}
		totals[id] = clicks
	}
	return totals, rows.Err()
}
