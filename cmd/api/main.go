package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"motifapi/docs"
	"motifapi/internal/config"
	"motifapi/internal/database"
	"motifapi/internal/database/migration"
	handlers "motifapi/internal/http/handler"
	"motifapi/internal/http/middleware"
	applog "motifapi/internal/log"
	"motifapi/internal/metrics"
	appotel "motifapi/internal/otel"
	"motifapi/internal/repository/postgres"
	"motifapi/internal/service"
	"motifapi/internal/storage"
	"motifapi/internal/worker"
)

const serviceName = "motifapi"

// @title Motif Discovery API
// @version 1.0
// @description Upload multivariate time series and discover k-Motiflets.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	applog.Configure(applog.Config{Level: cfg.Log.Level, Service: serviceName})
	logger := applog.WithComponent("main")
	loc := cfg.Log.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := appotel.Init(ctx, cfg.Tracing, serviceName, applog.WithComponent("otel"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database, applog.Base())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, applog.Base(), cfg.Database.Host); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO, applog.Base())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	discoveryMetrics, err := metrics.NewDiscovery(reg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register discovery metrics")
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register http metrics")
	}

	pool := worker.New(cfg.Worker.Count, cfg.Worker.QueueSize, applog.Base())

	// Initialize repositories and services
	datasetRepo := postgres.NewDatasetPostgres(db)
	discoveryRepo := postgres.NewDiscoveryPostgres(db)
	datasetSvc := service.NewDatasetService(objStore, datasetRepo, discoveryRepo, cfg.Discovery, applog.Base())
	discoverySvc := service.NewDiscoveryService(service.DiscoveryDeps{
		Store:      objStore,
		Datasets:   datasetRepo,
		Runs:       discoveryRepo,
		Pool:       pool,
		Config:     cfg.Discovery,
		JobTimeout: time.Duration(cfg.Worker.JobTimeoutSec) * time.Second,
		Metrics:    discoveryMetrics,
		Logger:     applog.Base(),
	})

	if _, err := discoverySvc.RecoverUnfinished(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to recover unfinished discoveries")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             int(cfg.Discovery.MaxUploadBytes) + 1<<20,
		DisableStartupMessage: true,
	})

	// Register global middleware
	app.Use(recover.New())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || c.Path() == "/healthz"
	})))
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(applog.WithComponent("http"), loc))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, datasetSvc, discoverySvc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("http server listening")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	if err := pool.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logger.Error().Err(err).Msg("worker shutdown failed")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("tracing shutdown failed")
	}
	logger.Info().Msg("bye")
}
