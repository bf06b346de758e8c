// Command server runs the phishsense detection service: the HTTP API, the
// gRPC DetectionService and, when Kafka is configured, the scan consumer.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/phishsense/phishsense/internal/application/usecase"
	"github.com/phishsense/phishsense/internal/domain/port"
	"github.com/phishsense/phishsense/internal/infrastructure/config"
	"github.com/phishsense/phishsense/internal/infrastructure/messaging"
	"github.com/phishsense/phishsense/internal/infrastructure/pipeline"
	"github.com/phishsense/phishsense/internal/infrastructure/postgres"
	"github.com/phishsense/phishsense/internal/presentation/consumer"
	grpcpresentation "github.com/phishsense/phishsense/internal/presentation/grpc"
	"github.com/phishsense/phishsense/internal/presentation/rest"
	"github.com/phishsense/phishsense/migrations"
	pkgkafka "github.com/phishsense/phishsense/pkg/kafka"
	"github.com/phishsense/phishsense/pkg/observability"
	pkgpostgres "github.com/phishsense/phishsense/pkg/postgres"
	"github.com/phishsense/phishsense/pkg/tlsutil"
)

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: rest.ServiceName,
	})

	logger.Info("starting phishsense",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"history", cfg.HistoryEnabled(),
		"events", cfg.EventsEnabled(),
		"network_lookups", cfg.NetworkLookups,
	)

	// Initialize tracing.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: rest.ServiceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer shutdownTracer(context.Background())
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: rest.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer meterProvider.Shutdown(context.Background())

	// Wire the detection pipeline.
	pipelineOpts := pipeline.FromConfig(cfg, logger)
	pipelineOpts.MeterProvider = meterProvider
	p, err := pipeline.New(pipelineOpts)
	if err != nil {
		logger.Error("failed to build detection pipeline", "error", err)
		os.Exit(1)
	}

	checks := map[string]rest.CheckFunc{
		"classifier": func(context.Context) error {
			if !p.Classifier.Available() {
				return errors.New("model artifact unavailable, heuristics only")
			}
			return nil
		},
	}
	detectOpts := []usecase.Option{usecase.WithMeterProvider(meterProvider)}

	// Detection history.
	var repo port.DetectionRepository
	if cfg.HistoryEnabled() {
		pool, err := connectDatabase(ctx, cfg, logger)
		if err != nil {
			logger.Error("failed to prepare database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		repo = postgres.NewDetectionRepository(pool)
		detectOpts = append(detectOpts, usecase.WithRepository(repo))
		checks["database"] = func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) }
	}

	// Detection events.
	var producer *pkgkafka.Producer
	if cfg.EventsEnabled() {
		producer, err = pkgkafka.NewProducer(cfg.Kafka())
		if err != nil {
			logger.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		detectOpts = append(detectOpts, usecase.WithPublisher(messaging.NewKafkaPublisher(producer, cfg.KafkaTopic, logger)))
	}

	// Wire use cases.
	detectURLUC := usecase.NewDetectURL(p.Detector, logger, detectOpts...)
	getDetectionUC := usecase.NewGetDetection(repo)
	listDetectionsUC := usecase.NewListDetections(repo)

	// gRPC server.
	certFile, keyFile, err := cfg.GRPCTLSFiles()
	if err != nil {
		logger.Error("failed to prepare gRPC TLS credentials", "error", err)
		os.Exit(1)
	}
	if cfg.GRPCTLSDevCertDir != "" {
		logger.Warn("serving gRPC with development certificates",
			"ca", filepath.Join(cfg.GRPCTLSDevCertDir, tlsutil.CAFile))
	}
	grpcHandler := grpcpresentation.NewDetectionServiceHandler(detectURLUC, getDetectionUC, listDetectionsUC, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:    cfg.GRPCAddress(),
		CertFile:   certFile,
		KeyFile:    keyFile,
		Reflection: cfg.Environment == "development",
	}, logger)
	if err != nil {
		logger.Error("failed to create gRPC server", "error", err)
		os.Exit(1)
	}

	// HTTP server.
	httpServer := &http.Server{
		Addr: cfg.HTTPAddress(),
		Handler: rest.NewRouter(rest.RouterConfig{
			Health:    rest.NewHealthHandler(logger, checks),
			Detection: rest.NewDetectionHandler(detectURLUC, getDetectionUC, listDetectionsUC, logger),
			Metrics:   metricsHandler,
			RateLimit: rest.NewPerClientRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
			Logger:    logger,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 4*cfg.LookupTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Queued scans.
	if cfg.EventsEnabled() && cfg.KafkaScanTopic != "" {
		scans := consumer.NewScanHandler(detectURLUC, logger)
		scanConsumer, err := pkgkafka.NewConsumer(cfg.Kafka(), cfg.KafkaScanTopic, scans.Handle, logger)
		if err != nil {
			logger.Error("failed to create scan consumer", "error", err)
			os.Exit(1)
		}
		defer scanConsumer.Close()

		go func() {
			if err := scanConsumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("scan consumer error: %w", err)
			}
		}()
	}

	logger.Info("phishsense started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
	)

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	logger.Info("shutting down phishsense")
	cancel()

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("phishsense stopped")
}

// connectDatabase opens the pool and applies migrations, from MIGRATIONS_DIR
// when set and from the embedded set otherwise.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, pkgpostgres.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, err
	}
	logger.Info("connected to database")

	if cfg.MigrationsDir != "" {
		err = pkgpostgres.RunMigrations(cfg.DatabaseURL, "file://"+cfg.MigrationsDir)
	} else {
		err = pkgpostgres.RunEmbeddedMigrations(cfg.DatabaseURL, migrations.FS)
	}
	if err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("database migrations applied")
	return pool, nil
}
