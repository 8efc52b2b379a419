package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Panmoni/localsolana-api/config"
	httpHandler "github.com/Panmoni/localsolana-api/internal/adapter/http/handler"
	pgStorage "github.com/Panmoni/localsolana-api/internal/adapter/storage/postgres"
	redisStorage "github.com/Panmoni/localsolana-api/internal/adapter/storage/redis"
	"github.com/Panmoni/localsolana-api/internal/core/ports"
	"github.com/Panmoni/localsolana-api/internal/service"
	"github.com/Panmoni/localsolana-api/internal/solana"
	"github.com/Panmoni/localsolana-api/pkg/logger"

	"github.com/shopspring/decimal"
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
		Str("program_id", cfg.Solana.ProgramID).
		Msg("Starting LocalSolana API")

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
	offerRepo := pgStorage.NewOfferRepo(pool)
	tradeRepo := pgStorage.NewTradeRepo(pool)
	escrowRepo := pgStorage.NewEscrowRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize Redis stores
	instructionCache := redisStorage.NewInstructionCache(rdb)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize the instruction builder for the escrow program
	builder := solana.NewBuilder(cfg.Solana.ProgramID)

	// Initialize core services
	var keys ports.KeyProvider
	if cfg.Auth.SecretFile != "" {
		keys = service.NewRefreshingKeyProvider(service.FileKeyFetch(cfg.Auth.SecretFile), cfg.Auth.KeyRefresh)
		log.Info().Str("secret_file", cfg.Auth.SecretFile).Dur("key_refresh", cfg.Auth.KeyRefresh).
			Msg("Signing key loaded from file with periodic refresh")
	} else {
		keys = service.NewStaticKeyProvider(cfg.Auth.Secret)
	}
	tokenSvc := service.NewIdentityTokenService(keys, cfg.Auth.Issuer)
	authzSvc := service.NewAuthzService(accountRepo, offerRepo, tradeRepo)

	// Initialize business services
	accountSvc := service.NewAccountService(accountRepo, authzSvc, log)
	offerSvc := service.NewOfferService(
		offerRepo,
		accountRepo,
		authzSvc,
		decimal.NewFromFloat(cfg.Offer.MaxMinAmount),
		log,
	)
	tradeSvc := service.NewTradeService(tradeRepo, offerRepo, accountRepo, transactor, log)
	escrowSvc := service.NewEscrowService(
		builder,
		escrowRepo,
		tradeRepo,
		authzSvc,
		instructionCache,
		"USDC",
		log,
	)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)
	solanaHealth := solana.NewHealthCheck(cfg.Solana.RPC)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		TokenSvc:       tokenSvc,
		AccountSvc:     accountSvc,
		OfferSvc:       offerSvc,
		TradeSvc:       tradeSvc,
		EscrowSvc:      escrowSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth, solanaHealth},
		Logger:         log,
	})

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
