// Package handler implements the storefront HTTP/JSON API.
package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/orgalife/storefront/internal/domain/analytics"
	"github.com/orgalife/storefront/internal/domain/discount"
	"github.com/orgalife/storefront/internal/domain/order"
	"github.com/orgalife/storefront/internal/domain/product"
	"github.com/orgalife/storefront/internal/domain/settings"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product and order
	// responses. When empty, image paths are returned as stored.
	ImageBaseURL string
	// UploadDir is the directory uploaded product images are written to.
	UploadDir string
}

// Handler serves the storefront API, delegating business logic to the
// domain services and repositories.
type Handler struct {
	products  product.Repository
	orders    *order.Service
	discounts discount.Registry
	settings  settings.Repository
	analytics *analytics.Service

	imageBaseURL string
	uploadDir    string

	metrics *metrics
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products product.Repository,
	orders *order.Service,
	discounts discount.Registry,
	st settings.Repository,
	an *analytics.Service,
	mp metric.MeterProvider,
) (*Handler, error) {
	m, err := newMetrics(mp)
	if err != nil {
		return nil, errors.Wrap(err, "create metrics")
	}

	return &Handler{
		products:     products,
		orders:       orders,
		discounts:    discounts,
		settings:     st,
		analytics:    an,
		imageBaseURL: cfg.ImageBaseURL,
		uploadDir:    cfg.UploadDir,
		metrics:      m,
	}, nil
}

// Routes registers all API routes on a fresh ServeMux. Paths include the
// /api prefix so the mux can be mounted directly on the server mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("POST /api/products", h.CreateProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.DeleteProduct)

	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("POST /api/orders", h.PlaceOrder)
	mux.HandleFunc("PATCH /api/orders/{id}", h.UpdateOrderStatus)

	mux.HandleFunc("GET /api/settings", h.GetSettings)
	mux.HandleFunc("POST /api/settings", h.UpdateSettings)
	mux.HandleFunc("POST /api/settings/discounts", h.AddDiscount)
	mux.HandleFunc("DELETE /api/settings/discounts/{code}", h.RemoveDiscount)

	mux.HandleFunc("POST /api/login", h.Login)

	mux.HandleFunc("POST /api/click/{id}", h.RecordClick)
	mux.HandleFunc("GET /api/analytics", h.Analytics)
	mux.HandleFunc("GET /api/analytics/retention", h.Retention)
	mux.HandleFunc("GET /api/analytics/sales", h.Sales)

	return mux
}

// imageURL resolves a stored image reference to the URL clients should use.
func (h *Handler) imageURL(image string) string {
	if image == "" || h.imageBaseURL == "" {
		return image
	}
	if len(image) >= 4 && image[:4] == "http" {
		return image
	}
	return h.imageBaseURL + image
}
