// Package app wires the storefront service together: configuration, storage,
// domain services, HTTP server, and the notification dispatcher.
package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/orgalife/storefront/internal/domain/analytics"
	"github.com/orgalife/storefront/internal/domain/order"
	"github.com/orgalife/storefront/internal/handler"
	"github.com/orgalife/storefront/internal/notify"
	"github.com/orgalife/storefront/internal/storage/postgres"
	"github.com/orgalife/storefront/pkg/health"
	"github.com/orgalife/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server and the notification
// worker, and handles graceful shutdown. It is the single wiring point for
// the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return errors.Wrap(err, "create upload dir")
	}

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	discountRegistry := postgres.NewDiscountRegistry(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)
	clickStore := postgres.NewClickStore(pool)

	// Notification dispatcher.
	sender := notify.NewTelegram(cfg.Notify.APIBaseURL, cfg.Notify.Timeout)
	dispatcher := notify.NewDispatcher(
		notify.DispatcherConfig{
			QueueSize: cfg.Notify.QueueSize,
			UploadDir: cfg.UploadDir,
		},
		settingsRepo,
		sender,
		lg.Named("notify"),
		m.TracerProvider(),
	)

	// Domain services.
	orderService := order.NewService(productRepo, discountRegistry, orderRepo, dispatcher)
	analyticsService := analytics.NewService(clickStore, orderRepo, lg.Named("analytics"))

	// HTTP handlers.
	h, err := handler.New(
		handler.Config{ImageBaseURL: cfg.ImageBaseURL, UploadDir: cfg.UploadDir},
		productRepo,
		orderService,
		discountRegistry,
		settingsRepo,
		analyticsService,
		m.MeterProvider(),
	)
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	mux.Handle("/api/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins: cfg.CORS.Origins,
				AllowHeaders: []string{"Content-Type", "Authorization"},
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("storefront", m.TracerProvider(), m.MeterProvider()),
			httpmiddleware.LogRequests(),
		),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dispatcher.Run(gctx)
	})

	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})

	// Graceful shutdown: flip readiness, drain, then stop the listener.
	g.Go(func() error {
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		return nil
	})

	return g.Wait()
}
