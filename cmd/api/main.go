package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"revpay/config"
	httpHandler "revpay/internal/adapter/http/handler"
	pgStorage "revpay/internal/adapter/storage/postgres"
	redisStorage "revpay/internal/adapter/storage/redis"
	"revpay/internal/core/ports"
	"revpay/internal/service"
	"revpay/pkg/logger"

	"github.com/rs/zerolog"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting RevPay")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	movementRepo := pgStorage.NewMovementRepo(pool)
	requestRepo := pgStorage.NewMoneyRequestRepo(pool)
	invoiceRepo := pgStorage.NewInvoiceRepo(pool)
	loanRepo := pgStorage.NewLoanRepo(pool)
	methodRepo := pgStorage.NewPaymentMethodRepo(pool)
	notificationRepo := pgStorage.NewNotificationRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	idempotencyCache := redisStorage.NewIdempotencyCache(rdb)
	pinLimiter := redisStorage.NewPinAttemptLimiter(rdb, cfg.Ledger.PinMaxAttempts, cfg.Ledger.PinAttemptWindow)
	loginLimiter := redisStorage.NewLoginAttemptLimiter(rdb, cfg.Ledger.PinMaxAttempts, cfg.Ledger.PinAttemptWindow)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	encSvc, err := service.NewAESEncryptionService(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize encryption service")
	}
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Ledger policy from config
	minAmount, maxAmount, feeRate, err := cfg.Ledger.Policy()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid ledger policy")
	}
	policy := service.LedgerPolicy{
		MinAmount: minAmount,
		MaxAmount: maxAmount,
		FeeRate:   feeRate,
	}

	// Initialize business services
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc, loginLimiter, log)
	ledgerSvc := service.NewLedgerService(
		accountRepo,
		movementRepo,
		methodRepo,
		idempotencyCache,
		pinLimiter,
		hashSvc,
		transactor,
		policy,
		log,
	)
	reportingSvc := service.NewReportingService(accountRepo, movementRepo)
	requestSvc := service.NewMoneyRequestService(requestRepo, accountRepo, ledgerSvc, policy, cfg.Ledger.RequestExpiry, log)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, accountRepo, ledgerSvc, policy, log)
	loanSvc := service.NewLoanService(loanRepo, accountRepo, log)
	methodSvc := service.NewPaymentMethodService(methodRepo, encSvc, log)
	notificationSvc := service.NewNotificationService(notificationRepo, log)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:         authSvc,
		LedgerSvc:       ledgerSvc,
		ReportingSvc:    reportingSvc,
		MoneyRequestSvc: requestSvc,
		InvoiceSvc:      invoiceSvc,
		LoanSvc:         loanSvc,
		MethodSvc:       methodSvc,
		NotificationSvc: notificationSvc,
		TokenSvc:        tokenSvc,
		RateLimitStore:  rateLimitStore,
		HealthCheckers:  []ports.HealthChecker{pgHealth, redisHealth},
		Logger:          log,
	})

	// Background sweeps: expire pending money requests, mark overdue invoices.
	sweepCtx, stopSweeps := context.WithCancel(ctx)
	defer stopSweeps()
	go runSweeps(sweepCtx, requestSvc, invoiceSvc, log)

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")
	stopSweeps()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// runSweeps periodically expires stale money requests and flags overdue
// invoices until the context is cancelled.
func runSweeps(ctx context.Context, requestSvc ports.MoneyRequestService, invoiceSvc ports.InvoiceService, log zerolog.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := requestSvc.ExpirePending(ctx); err != nil {
				log.Warn().Err(err).Msg("money request expiry sweep failed")
			} else if n > 0 {
				log.Info().Int64("expired", n).Msg("money requests expired")
			}

			if n, err := invoiceSvc.MarkOverdue(ctx); err != nil {
				log.Warn().Err(err).Msg("invoice overdue sweep failed")
			} else if n > 0 {
				log.Info().Int64("overdue", n).Msg("invoices marked overdue")
			}
		}
	}
}
