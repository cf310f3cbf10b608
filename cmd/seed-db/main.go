// Command seed-db loads the product catalog, default discount codes, and
// initial settings into the database. Safe to re-run: everything upserts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/orgalife/storefront/internal/storage/postgres"
)

type productJSON struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	WholesalePrice int64  `json:"wholesalePrice"`
	Category       string `json:"category"`
	Image          string `json:"image"`
	Stock          int    `json:"stock"`
	Description    string `json:"description"`
	IsInSlider     bool   `json:"isInSlider"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.StringVar(&adminPassword, "admin-password", "", "initial admin password (or STORE_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("STORE_SEED_ADMIN_PASSWORD")
	}
	if adminPassword == "" {
		slog.Error("admin password is required: set --admin-password or STORE_SEED_ADMIN_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}
	if err := seedDiscounts(ctx, pool); err != nil {
		return errors.Wrap(err, "seed discounts")
	}
	if err := seedSettings(ctx, pool, adminPassword); err != nil {
		return errors.Wrap(err, "seed settings")
	}

	return nil
}

const upsertProductSQL = `
INSERT INTO products (id, name, price, wholesale_price, category, image, stock, description, is_in_slider)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	price = EXCLUDED.price,
	wholesale_price = EXCLUDED.wholesale_price,
	category = EXCLUDED.category,
	image = EXCLUDED.image,
	stock = EXCLUDED.stock,
	description = EXCLUDED.description,
	is_in_slider = EXCLUDED.is_in_slider
`

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, p := range products {
		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.ID, p.Name, p.Price, p.WholesalePrice, p.Category,
			p.Image, p.Stock, p.Description, p.IsInSlider,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

const upsertDiscountSQL = `
INSERT INTO discounts (code, percent)
VALUES ($1, $2)
ON CONFLICT (code) DO UPDATE SET percent = EXCLUDED.percent
`

func seedDiscounts(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding default discount codes")

	discounts := []struct {
		code    string
		percent int
	}{
		{"SAVE10", 10},
		{"WELCOME5", 5},
	}

	for _, d := range discounts {
		if _, err := pool.Exec(ctx, upsertDiscountSQL, d.code, d.percent); err != nil {
			return errors.Wrapf(err, "upsert discount %s", d.code)
		}

		slog.Info("upserted discount", slog.String("code", d.code), slog.Int("percent", d.percent))
	}

	return nil
}

const upsertSettingsSQL = `
INSERT INTO settings (id, whatsapp_number, telegram_bot_token, telegram_chat_id, admin_password_hash)
VALUES (1, '', '', '', $1)
ON CONFLICT (id) DO UPDATE SET admin_password_hash = EXCLUDED.admin_password_hash
`

func seedSettings(ctx context.Context, pool *pgxpool.Pool, adminPassword string) error {
	slog.Info("seeding settings")

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	if _, err := pool.Exec(ctx, upsertSettingsSQL, string(hash)); err != nil {
		return errors.Wrap(err, "upsert settings")
	}

	slog.Info("upserted settings document")
	return nil
}
