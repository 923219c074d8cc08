package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"filingapi/internal/config"
	"filingapi/internal/database"
	"filingapi/internal/database/migration"
	handlers "filingapi/internal/http/handler"
	"filingapi/internal/http/middleware"
	"filingapi/internal/ledger"
	"filingapi/internal/otel"
	"filingapi/internal/repository/postgres"
	"filingapi/internal/service"
	"filingapi/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Tracing is a no-op unless OTEL_ENABLED is set
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Repositories
	filingRepo := postgres.NewFilingPostgres(db)
	documentRepo := postgres.NewDocumentPostgres(db)
	resultRepo := postgres.NewResultPostgres(db)
	auditRepo := postgres.NewAuditPostgres(db)
	userRepo := postgres.NewUserPostgres(db)

	// Ledger submitter; degrades to simulated ids without RPC configuration
	submitter := ledger.NewSubmitter(cfg.Ledger)

	// Services
	filingSvc := service.NewFilingService(objStore, cfg.MinIO.Bucket, cfg.MaxUploadMB,
		filingRepo, documentRepo, resultRepo, userRepo, auditRepo)
	finalizeSvc := service.NewFinalizeService(filingRepo, documentRepo, resultRepo, auditRepo, submitter)
	dossierSvc := service.NewDossierService(objStore, cfg.MinIO.Bucket, cfg.MinIO.DossierBucket,
		filingRepo, documentRepo, resultRepo, auditRepo)

	app := fiber.New(fiber.Config{
		BodyLimit:    (cfg.MaxUploadMB + 1) * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())

	registry := prometheus.NewRegistry()
	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, cfg.Auth, promMiddleware, filingSvc, finalizeSvc, dossierSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
