package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/odontosys/clinic-api/cmd/mainconfig"
	"github.com/odontosys/clinic-api/internal/api/router"
	"github.com/odontosys/clinic-api/internal/app/bootstrap"
	"github.com/odontosys/clinic-api/internal/appointments"
	appconfig "github.com/odontosys/clinic-api/internal/config"
	"github.com/odontosys/clinic-api/internal/media"
	"github.com/odontosys/clinic-api/internal/notify"
	"github.com/odontosys/clinic-api/internal/observability/metrics"
	"github.com/odontosys/clinic-api/internal/odontogram"
	"github.com/odontosys/clinic-api/internal/patients"
	"github.com/odontosys/clinic-api/internal/presupuestos"
	"github.com/odontosys/clinic-api/internal/reports"
	"github.com/odontosys/clinic-api/internal/schedule"
	"github.com/odontosys/clinic-api/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic API server", "env", cfg.Env, "port", cfg.Port)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Separate database/sql handle for the report aggregates.
	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open sql db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	schedulingMetrics := metrics.NewSchedulingMetrics(registry)
	deliveryMetrics := metrics.NewDeliveryMetrics(registry)

	// AWS clients for media storage and staff notifications.
	var mediaHandler *media.Handler
	var notifier notify.Sender = notify.NoopSender{}
	if cfg.MediaBucket != "" || cfg.ClinicEmail != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		if cfg.MediaBucket != "" {
			store := media.NewStore(s3.NewFromConfig(awsCfg), cfg.MediaBucket, cfg.MediaPublicBaseURL)
			mediaHandler = media.NewHandler(store, logger)
		}
		if cfg.ClinicEmail != "" && cfg.NotifyFromEmail != "" {
			notifier = notify.NewSESSender(sesv2.NewFromConfig(awsCfg), cfg.NotifyFromEmail, cfg.NotifyFromName)
		}
	}

	// Schedule policy store falls back to the built-in calendar when Redis
	// is unavailable.
	policyStore := schedule.NewPolicyStore(redisClient)

	// Patients
	patientsRepo := patients.NewPostgresRepository(pool)
	patientsHandler := patients.NewHandler(patientsRepo, logger)

	// Appointments
	apptRepo := appointments.NewPostgresRepository(pool)
	apptService := appointments.NewService(apptRepo, policyStore, schedulingMetrics, logger)
	apptHandler := appointments.NewHandler(apptService, apptRepo, logger)

	// Odontogram
	odontogramRepo := odontogram.NewPostgresRepository(pool)
	odontogramHandler := odontogram.NewHandler(odontogramRepo, logger)

	// Presupuestos
	presupuestosRepo := presupuestos.NewPostgresRepository(pool)
	tokens := presupuestos.NewTokenSigner(cfg.CallbackTokenSecret, cfg.CallbackTokenLifetime)
	deliverer := presupuestos.NewWebhookDeliverer(
		cfg.AutomationWebhookURL, cfg.AutomationTimeout, logger,
		presupuestos.WithDeliveryMetrics(deliveryMetrics),
		presupuestos.WithRetry(cfg.AutomationMaxAttempts, cfg.AutomationRetryDelay),
	)
	presupuestosService := presupuestos.NewService(presupuestos.ServiceConfig{
		Repo:          presupuestosRepo,
		Deliverer:     deliverer,
		Tokens:        tokens,
		Notifier:      notifier,
		Metrics:       deliveryMetrics,
		Logger:        logger,
		PublicBaseURL: cfg.PublicBaseURL,
		ClinicEmail:   cfg.ClinicEmail,
	})
	confirmationURL := cfg.ConfirmationPageURL
	if confirmationURL == "" {
		confirmationURL = cfg.PublicBaseURL + "/presupuesto/confirmacion"
	}
	presupuestosHandler := presupuestos.NewHandler(presupuestosRepo, presupuestosService, confirmationURL, logger)

	// Reports
	reportsHandler := reports.NewHandler(reports.NewService(sqlDB), logger)

	r := router.New(&router.Config{
		Logger:              logger,
		PatientsHandler:     patientsHandler,
		AppointmentsHandler: apptHandler,
		OdontogramHandler:   odontogramHandler,
		PresupuestosHandler: presupuestosHandler,
		MediaHandler:        mediaHandler,
		ReportsHandler:      reportsHandler,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		CallbackRateLimit:   5,
		CallbackBurst:       20,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
