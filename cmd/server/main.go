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

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/pocketledger/internal/adapter/http"
	"github.com/iho/pocketledger/internal/adapter/http/handler"
	"github.com/iho/pocketledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/pocketledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/pocketledger/internal/adapter/repository/redis"
	"github.com/iho/pocketledger/internal/domain"
	"github.com/iho/pocketledger/internal/infrastructure/auth"
	"github.com/iho/pocketledger/internal/infrastructure/config"
	"github.com/iho/pocketledger/internal/infrastructure/eventpublisher"
	"github.com/iho/pocketledger/internal/infrastructure/logger"
	"github.com/iho/pocketledger/internal/infrastructure/metrics"
	"github.com/iho/pocketledger/internal/infrastructure/postgres"
	"github.com/iho/pocketledger/internal/infrastructure/redis"
	"github.com/iho/pocketledger/internal/usecase"
)

const rateLimiterIdle = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.DefaultContextLogger = &log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	if cfg.AutoMigrate {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancelConnect()

	pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		ConnectAttempts: cfg.DatabaseConnectAttempts,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	var redisClient *goredis.Client
	if cfg.RedisEnabled {
		redisClient, err = redis.NewClientWithConfig(ctx, redis.ClientConfig{
			URL:             cfg.RedisURL,
			PoolSize:        cfg.RedisPoolSize,
			ConnectAttempts: cfg.RedisConnectAttempts,
		})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	}

	m := metrics.New(nil)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool).WithLockTimeout(cfg.LockTimeout)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	categoryRepo := postgresRepo.NewCategoryRepository(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	loanRepo := postgresRepo.NewLoanRepository(pool)
	paymentRepo := postgresRepo.NewLoanPaymentRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	outboxRepo := outboxFor(cfg, pool)
	idGen := postgresRepo.NewULIDGenerator()

	// Use cases
	walletUC := usecase.NewWalletUseCase(txManager, walletRepo, outboxRepo, idGen)
	categoryUC := usecase.NewCategoryUseCase(categoryRepo, idGen)
	transactionUC := usecase.NewTransactionUseCase(txManager, walletRepo, categoryRepo, transactionRepo, entryRepo, outboxRepo, idGen).
		WithMetrics(m).
		WithRetrier(postgresRepo.NewRetrier().WithMaxRetries(cfg.DeadlockRetries).WithMetrics(m))
	loanUC := usecase.NewLoanUseCase(transactionUC, loanRepo, paymentRepo).
		WithDefaultCategory(cfg.LoanCategoryName)
	if redisClient != nil {
		loanUC = loanUC.WithStatsCache(redisRepo.NewCache(redisClient, "stats"), cfg.StatsCacheTTL)
	}
	ledgerUC := usecase.NewReconciliationUseCase(walletRepo, entryRepo, ledgerRepo)
	userUC := usecase.NewUserUseCase(userRepo, idGen)

	// Handlers
	healthHandler := handler.NewHealthHandler().WithCheck("postgres", pool)
	if redisClient != nil {
		healthHandler = healthHandler.WithCheck("redis", handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
	}

	routerCfg := httpAdapter.RouterConfig{
		WalletHandler:      handler.NewWalletHandler(walletUC),
		CategoryHandler:    handler.NewCategoryHandler(categoryUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		LoanHandler:        handler.NewLoanHandler(loanUC),
		LedgerHandler:      handler.NewLedgerHandler(ledgerUC),
		HealthHandler:      healthHandler,
		Logger:             log,
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	routerCfg.AuthHandler = handler.NewAuthHandler(userUC, jwtManager).WithMetrics(m)
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = jwtManager
	} else {
		log.Warn().Str("header", middleware.OwnerHeader).Msg("authentication disabled, trusting owner header")
	}

	if redisClient != nil {
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		routerCfg.IdempotencyTTL = cfg.IdempotencyTTL
	}

	limiter := newRateLimiter(cfg, m)
	routerCfg.RateLimiter = limiter

	server := newHTTPServer(cfg, httpAdapter.NewRouter(routerCfg))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.OutboxEnabled {
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  publisherFor(redisClient, cfg, log),
			Logger:     log,
			Metrics:    m,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxPollInterval,
			Retention:  cfg.OutboxRetention,
		})
		g.Go(func() error {
			if err := publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if limiter != nil {
		g.Go(func() error {
			ticker := time.NewTicker(rateLimiterIdle)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					limiter.Cleanup(rateLimiterIdle)
				}
			}
		})
	}

	return g.Wait()
}

func validateConfig(cfg *config.Config) error {
	if cfg.AuthEnabled && cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when AUTH_ENABLED is set")
	}
	if err := domain.ValidateCurrency(cfg.Currency); err != nil {
		return fmt.Errorf("CURRENCY: %w", err)
	}
	return nil
}

func outboxFor(cfg *config.Config, pool *pgxpool.Pool) usecase.OutboxRepository {
	if !cfg.OutboxEnabled {
		return postgresRepo.NewNullOutboxRepository()
	}
	return postgresRepo.NewOutboxRepository(pool)
}

func publisherFor(client *goredis.Client, cfg *config.Config, log zerolog.Logger) eventpublisher.Publisher {
	if client == nil {
		return eventpublisher.NewLogPublisher(log)
	}
	return redisRepo.NewStreamPublisher(client, cfg.EventsStream, 0)
}

func newRateLimiter(cfg *config.Config, m *metrics.Metrics) *middleware.RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)
}

func newHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}
