package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orgalife/storefront/internal/domain/product"
)

const (
	productColumns = `id, name, price, wholesale_price, category, image, stock, description, is_in_slider, created_at`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	createProductSQL = `INSERT INTO products
		(id, name, price, wholesale_price, category, image, stock, description, is_in_slider, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateProductSQL = `UPDATE products SET
		name = $2, price = $3, wholesale_price = $4, category = $5, image = $6,
		stock = $7, description = $8, is_in_slider = $9
		WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products, most recently created first.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs. Unknown ids are
// simply absent from the result.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create persists a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.Name, p.Price, p.WholesalePrice, p.Category, p.Image,
		p.Stock, p.Description, p.IsInSlider, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Update applies a partial update inside a transaction: the current row is
// locked, patched in memory, and written back whole.
func (r *ProductRepository) Update(ctx context.Context, id string, upd product.Update) (*product.Product, error) {
	var updated product.Product

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, getProductByIDSQL+` FOR UPDATE`, id)
		if err != nil {
			return err
		}
		p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return product.ErrNotFound
			}
			return err
		}

		applyProductUpdate(&p, upd)

		if _, err := tx.Exec(ctx, updateProductSQL,
			p.ID, p.Name, p.Price, p.WholesalePrice, p.Category, p.Image,
			p.Stock, p.Description, p.IsInSlider,
		); err != nil {
			return err
		}

		updated = p
		return nil
	})
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("updating product %q: %w", id, err)
	}
	return &updated, nil
}

// Delete removes a product by id.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func applyProductUpdate(p *product.Product, upd product.Update) {
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.WholesalePrice != nil {
		p.WholesalePrice = *upd.WholesalePrice
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Image != nil {
		p.Image = *upd.Image
	}
	if upd.Stock != nil {
		p.Stock = *upd.Stock
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.IsInSlider != nil {
		p.IsInSlider = *upd.IsInSlider
	}
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.WholesalePrice, &p.Category,
		&p.Image, &p.Stock, &p.Description, &p.IsInSlider, &p.CreatedAt,
	)
	return p, err
}
