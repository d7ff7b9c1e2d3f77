package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carebridge/clinic-platform/cmd/mainconfig"
	"github.com/carebridge/clinic-platform/internal/api/router"
	"github.com/carebridge/clinic-platform/internal/appointments"
	"github.com/carebridge/clinic-platform/internal/availability"
	appconfig "github.com/carebridge/clinic-platform/internal/config"
	"github.com/carebridge/clinic-platform/internal/directory"
	"github.com/carebridge/clinic-platform/internal/notify"
	"github.com/carebridge/clinic-platform/internal/observability/metrics"
	"github.com/carebridge/clinic-platform/internal/reports"
	"github.com/carebridge/clinic-platform/internal/storage"
	"github.com/carebridge/clinic-platform/pkg/logging"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	// Database connections. The account directory uses database/sql, the rest
	// of the repositories share a pgx pool.
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// AWS clients for report storage and outbound email
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	var blobs storage.BlobStore
	if cfg.ReportsBucket != "" {
		blobs = storage.NewS3Store(mainconfig.NewS3Client(awsCfg, cfg), cfg.ReportsBucket, logger)
	} else {
		logger.Warn("REPORTS_BUCKET not set, storing report files in memory")
		blobs = storage.NewInMemoryStore()
	}

	var emailSender notify.EmailSender
	if cfg.SESFromEmail != "" {
		emailSender = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger)
	} else {
		logger.Warn("SES_FROM_EMAIL not set, email notifications disabled")
	}
	notifier := notify.NewNotifier(emailSender, logger)

	// Metrics
	registry := prometheus.NewRegistry()
	clinicMetrics := metrics.NewClinicMetrics(registry)
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	// Initialize repositories and services
	accounts := directory.NewService(directory.NewSQLRepository(db), logger, cfg.JWTSecret, cfg.TokenTTL).
		WithNotifier(notifier)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			logger.Error("failed to seed admin account", "error", err)
			os.Exit(1)
		}
	}

	entries := availability.NewPostgresRepository(pool)
	availabilitySvc := availability.NewService(entries, logger)
	checker := availability.NewChecker(entries, time.Duration(cfg.BookingWindowDays)*24*time.Hour)

	appointmentSvc := appointments.NewService(
		appointments.NewPostgresRepository(pool), accounts, checker, notifier, clinicMetrics, logger)

	reportSvc := reports.NewService(
		reports.NewPostgresRepository(pool), accounts, blobs, notifier, clinicMetrics, logger,
		reports.Options{MaxUploadBytes: cfg.MaxUploadBytes, StrictShare: cfg.StrictSharing})

	// Setup router
	r := router.New(&router.Config{
		Logger:              logger,
		DirectoryHandler:    directory.NewHandler(accounts, logger),
		AvailabilityHandler: availability.NewHandler(availabilitySvc, logger),
		AppointmentsHandler: appointments.NewHandler(appointmentSvc, logger),
		ReportsHandler:      reports.NewHandler(reportSvc, logger),
		MetricsHandler:      metricsHandler,
		JWTSecret:           cfg.JWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitRPS:        cfg.RateLimitRPS,
		RateLimitBurst:      cfg.RateLimitBurst,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
