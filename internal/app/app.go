package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront-api/internal/domain/order"
	"github.com/xenking/storefront-api/internal/domain/product"
	"github.com/xenking/storefront-api/internal/handler"
	"github.com/xenking/storefront-api/pkg/health"
	"github.com/xenking/storefront-api/pkg/httpmiddleware"
)

const serviceName = "storefront-api"

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.ListenAddr()),
		zap.String("storage", cfg.StorageDriver),
		zap.Bool("trace", cfg.Diag().Enabled()),
	)

	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open stores")
	}
	defer stores.Close()

	h, err := NewHandler(stores, cfg, m)
	if err != nil {
		return err
	}

	healthSvc := health.New()
	healthSvc.AddReadinessCheck(cfg.StorageDriver, 5*time.Second, health.PingCheck(cfg.StorageDriver, stores.Ping))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.ListenAddr(),
		Handler:           Router(h, healthSvc, lg, m, cfg),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return healthSvc.Run(gCtx, 10*time.Second)
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	g.Go(func() error {
		// Graceful shutdown: drop readiness, let balancers notice, then drain.
		<-gCtx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	healthSvc.SetReady(true)

	return g.Wait()
}

// NewHandler builds the services over stores and the HTTP handler on top.
func NewHandler(stores *Stores, cfg *Config, m httpmiddleware.Telemetry) (*handler.Handler, error) {
	gate := cfg.Diag()
	products := product.NewService(stores.Products, gate)
	orders, err := order.NewService(stores.Products, stores.Orders, order.Options{
		Diag:           gate,
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "create order service")
	}
	return handler.NewHandler(products, orders, gate), nil
}

// Router mounts the probes and resources and applies the middleware chain.
func Router(h *handler.Handler, healthSvc *health.Health, lg *zap.Logger, m httpmiddleware.Telemetry, cfg *Config) http.Handler {
	r := chi.NewRouter()
	r.Get("/livez", healthSvc.LiveEndpoint)
	r.Get("/readyz", healthSvc.ReadyEndpoint)
	h.Register(r)

	return httpmiddleware.Wrap(r,
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			Origins:     cfg.CORS.Origins,
			Headers:     []string{"Content-Type", httpmiddleware.HeaderRequestID},
			Credentials: cfg.CORS.Credentials,
			MaxAge:      86400,
		}),
		httpmiddleware.Instrument(serviceName, m),
		httpmiddleware.LogRequests(),
	)
}
