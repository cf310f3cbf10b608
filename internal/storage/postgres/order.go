package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgalife/storefront/internal/domain/order"
)

const (
	orderColumns = `id, customer_name, customer_phone, customer_address, items,
		discount_code, subtotal, discount, total, status, created_at`

	createOrderSQL = `INSERT INTO orders
		(id, customer_name, customer_phone, customer_address, items,
		 discount_code, subtotal, discount, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	// Transition succeeds only out of Pending; the WHERE clause makes the
	// state machine atomic under concurrent updates to the same order.
	transitionOrderSQL = `UPDATE orders SET status = $2
		WHERE id = $1 AND status = 'Pending'
		RETURNING ` + orderColumns

	getOrderStatusSQL = `SELECT status FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. Items are serialized to JSON for storage in
// the JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshaling order items: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.CustomerName, o.CustomerPhone, o.CustomerAddress, itemsJSON,
		o.DiscountCode, o.Subtotal, o.Discount, o.Total, string(o.Status), o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

// List returns all orders, most recent first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// GetByID returns a single order by its identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// Transition atomically moves a Pending order to the given status. When the
// conditional update matches no row, the current status distinguishes an
// unknown order from an illegal transition.
func (r *OrderRepository) Transition(ctx context.Context, id string, to order.Status) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, transitionOrderSQL, id, string(to))
	if err != nil {
		return nil, fmt.Errorf("transitioning order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err == nil {
		return &o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transitioning order %q: %w", id, err)
	}

	var current string
	switch err := r.pool.QueryRow(ctx, getOrderStatusSQL, id).Scan(&current); {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, order.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("checking order %q status: %w", id, err)
	}

	return nil, &order.InvalidTransitionError{ID: id, From: order.Status(current), To: to}
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
		status    string
	)
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress, &itemsJSON,
		&o.DiscountCode, &o.Subtotal, &o.Discount, &o.Total, &status, &o.CreatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	return o, nil
}
