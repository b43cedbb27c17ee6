package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/cashbook/internal/adapter/http"
	"github.com/iho/cashbook/internal/adapter/http/handler"
	"github.com/iho/cashbook/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/cashbook/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cashbook/internal/adapter/repository/redis"
	"github.com/iho/cashbook/internal/infrastructure/config"
	"github.com/iho/cashbook/internal/infrastructure/eventpublisher"
	"github.com/iho/cashbook/internal/infrastructure/logger"
	"github.com/iho/cashbook/internal/infrastructure/metrics"
	"github.com/iho/cashbook/internal/infrastructure/postgres"
	"github.com/iho/cashbook/internal/infrastructure/redis"
	"github.com/iho/cashbook/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "cashbook"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancel()

	pool, err := postgres.NewPool(connectCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(connectCtx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewWithRegistry(reg)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	clientRepo := postgresRepo.NewClientRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	invoiceGen := postgresRepo.NewContractInvoiceGenerator(idGen)
	retrier := postgresRepo.NewRetrier(log)
	locker := redisRepo.NewSettlementLocker(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	snapshots := usecase.NewSnapshotStore(entryRepo, clientRepo, usecase.SnapshotConfig{
		FetchTimeout: cfg.SnapshotFetchTimeout,
		MaxAge:       cfg.SnapshotMaxAge,
	}, log, m)
	dashboardUC := usecase.NewDashboardUseCase(snapshots)
	entryUC := usecase.NewEntryUseCase(txManager, entryRepo, clientRepo, outboxRepo, idGen, snapshots, log, m)
	settlementUC := usecase.NewSettlementUseCase(txManager, entryRepo, outboxRepo, idGen, retrier, locker, snapshots,
		usecase.SettlementConfig{Timeout: cfg.SettlementTimeout, LockTTL: cfg.SettlementLockTTL}, log, m)
	invoiceUC := usecase.NewRecurringInvoiceUseCase(txManager, invoiceGen, outboxRepo, idGen, snapshots, log, m)

	if _, err := snapshots.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("initial snapshot fetch failed, views will retry on demand")
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		FinanceHandler:     handler.NewFinanceHandler(dashboardUC),
		EntryHandler:       handler.NewEntryHandler(entryUC),
		SettlementHandler:  handler.NewSettlementHandler(settlementUC),
		InvoiceHandler:     handler.NewInvoiceHandler(invoiceUC),
		HealthHandler:      handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		RateLimiter:        rateLimiter,
		Logger:             log,
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewRedisPublisher(redisClient, cfg.EventsChannel),
		Logger:     log,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
		Retention:  cfg.OutboxRetention,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		rateLimiter.RunCleanup(gctx, 10*time.Minute, time.Hour)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
