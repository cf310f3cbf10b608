package handler

import (
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
)

// metrics holds the handler's OTEL instruments.
type metrics struct {
	ordersPlaced   metric.Int64Counter
	ordersRejected metric.Int64Counter
	productViews   metric.Int64Counter
}

func newMetrics(mp metric.MeterProvider) (*metrics, error) {
	meter := mp.Meter("storefront/handler")

	ordersPlaced, err := meter.Int64Counter("orders_placed_total",
		metric.WithDescription("Orders successfully created"))
	if err != nil {
		return nil, errors.Wrap(err, "orders_placed_total")
	}

	ordersRejected, err := meter.Int64Counter("orders_rejected_total",
		metric.WithDescription("Order submissions rejected by validation"))
	if err != nil {
		return nil, errors.Wrap(err, "orders_rejected_total")
	}

	productViews, err := meter.Int64Counter("product_views_total",
		metric.WithDescription("Product view click events"))
	if err != nil {
		return nil, errors.Wrap(err, "product_views_total")
	}

	return &metrics{
		ordersPlaced:   ordersPlaced,
		ordersRejected: ordersRejected,
		productViews:   productViews,
	}, nil
}
