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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/iho/transferhub/internal/adapter/gateway"
	httpAdapter "github.com/iho/transferhub/internal/adapter/http"
	"github.com/iho/transferhub/internal/adapter/http/handler"
	"github.com/iho/transferhub/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/transferhub/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/transferhub/internal/adapter/repository/redis"
	"github.com/iho/transferhub/internal/infrastructure/config"
	"github.com/iho/transferhub/internal/infrastructure/correlation"
	"github.com/iho/transferhub/internal/infrastructure/escalation"
	"github.com/iho/transferhub/internal/infrastructure/logger"
	"github.com/iho/transferhub/internal/infrastructure/metrics"
	"github.com/iho/transferhub/internal/infrastructure/postgres"
	"github.com/iho/transferhub/internal/infrastructure/redis"
	"github.com/iho/transferhub/internal/usecase"
)

const (
	limiterCleanupInterval = time.Minute
	limiterMaxIdle         = 10 * time.Minute
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log.Logger); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		stop()
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logr zerolog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logr); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	logr.Info().Msg("connected to postgres")

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, redis.ClientConfig{
		URL:      cfg.RedisURL,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	logr.Info().Msg("connected to redis")

	refs := correlation.NewGenerator(loc)

	gw, err := gateway.New(gateway.Config{
		BaseURL:      cfg.GatewayBaseURL,
		System:       cfg.GatewaySystem,
		UserName:     cfg.GatewayUserName,
		Language:     cfg.GatewayLanguage,
		Timeout:      cfg.GatewayTimeout,
		MaxRetries:   cfg.GatewayMaxRetries,
		RetryInitial: cfg.GatewayRetryInitial,
		RetryMax:     cfg.GatewayRetryMax,
		Location:     loc,
	}, refs, logr, m)
	if err != nil {
		return fmt.Errorf("failed to create gateway client: %w", err)
	}

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool, postgresRepo.WithStatementTimeout(cfg.DatabaseStatementTimeout))
	retrier := postgresRepo.NewRetrier(logr, m, postgresRepo.WithMaxRetries(cfg.DatabaseMaxRetries))
	idGen := postgresRepo.NewULIDGenerator()
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	pricingRepo := postgresRepo.NewPricingRepository(pool)
	counterRepo := postgresRepo.NewLimitCounterRepository(pool)
	salaryRepo := postgresRepo.NewSalaryRepository(pool)
	caseRepo := postgresRepo.NewReconciliationRepository(pool)

	cache := redisRepo.NewCache(redisClient, m)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient, m)
	locker := redisRepo.NewPostingLocker(redisClient, m)

	// Initialize use cases
	reconUC := usecase.NewReconciliationUseCase(caseRepo, usecase.CaseStores{
		TxManager: txManager,
		Retrier:   retrier,
		Ledger:    ledgerRepo,
		Counters:  counterRepo,
		Salary:    salaryRepo,
	}, idGen, logr, m)
	lookupUC := usecase.NewLookupUseCase(gw, cache, cfg.BusinessCustomerCodes, cfg.CustomerStatusTTL, logr)
	pricingUC := usecase.NewPricingUseCase(pricingRepo, ledgerRepo, loc)
	transferUC := usecase.NewTransferUseCase(
		txManager, retrier, ledgerRepo, counterRepo, pricingUC, lookupUC, gw, refs, idGen, reconUC,
		usecase.TransferConfig{
			DefaultCurrency:   cfg.DefaultCurrency,
			CommissionAccount: cfg.DefaultCommissionAccount,
		},
		logr, m,
	)
	refundUC := usecase.NewRefundUseCase(
		txManager, retrier, ledgerRepo, counterRepo, gw, refs, idGen, reconUC, cfg.DefaultCurrency, logr, m,
	)
	payrollUC := usecase.NewPayrollUseCase(
		txManager, retrier, salaryRepo, pricingRepo, gw, refs, locker, reconUC,
		usecase.PayrollConfig{
			LockTTL:               cfg.PayrollLockTTL,
			CommissionAccount:     cfg.DefaultCommissionAccount,
			TrustHeaderOnUnparsed: cfg.PayrollTrustHeaderOnUnparsed,
		},
		logr, m,
	)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	// Initialize handlers
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransferHandler:       handler.NewTransferHandler(transferUC, refundUC),
		LedgerHandler:         handler.NewLedgerHandler(ledgerUC, refundUC),
		PayrollHandler:        handler.NewPayrollHandler(payrollUC),
		CustomerHandler:       handler.NewCustomerHandler(lookupUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		Idempotency:           middleware.NewIdempotencyMiddleware(idempotencyStore, cfg.IdempotencyTTL, logr),
		RateLimiter:           rateLimiter,
		Metrics:               m,
		Gatherer:              prometheus.DefaultGatherer,
		Logger:                logr,
	})

	server := newHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logr.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logr.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		cleanupLimiters(gctx, rateLimiter, limiterCleanupInterval, limiterMaxIdle, logr)
		return nil
	})

	if cfg.EscalationEnabled {
		worker := escalation.NewWorker(escalation.Config{
			Cases:     caseRepo,
			Notifier:  escalation.NewLogNotifier(logr),
			Logger:    logr,
			Metrics:   m,
			BatchSize: cfg.EscalationBatchSize,
			Interval:  cfg.EscalationInterval,
		})
		g.Go(func() error {
			if err := worker.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:           h,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}
}

type limiterCleaner interface {
	CleanupLimiters(maxIdle time.Duration) int
}

// cleanupLimiters drops idle per-client limiters until ctx is done.
func cleanupLimiters(ctx context.Context, rl limiterCleaner, interval, maxIdle time.Duration, logr zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := rl.CleanupLimiters(maxIdle); n > 0 {
				logr.Debug().Int("removed", n).Msg("dropped idle rate limiters")
			}
		}
	}
}
