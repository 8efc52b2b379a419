package handler

import (
	"github.com/Panmoni/localsolana-api/internal/adapter/http/middleware"
	redisStore "github.com/Panmoni/localsolana-api/internal/adapter/storage/redis"
	"github.com/Panmoni/localsolana-api/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	TokenSvc       ports.TokenService
	AccountSvc     ports.AccountService
	OfferSvc       ports.OfferService
	TradeSvc       ports.TradeService
	EscrowSvc      ports.EscrowService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis + Solana RPC)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	auth := middleware.IdentityAuth(deps.TokenSvc, deps.Logger)
	optionalAuth := middleware.OptionalIdentityAuth(deps.TokenSvc)

	accountHandler := NewAccountHandler(deps.AccountSvc)
	offerHandler := NewOfferHandler(deps.OfferSvc, deps.AccountSvc)
	tradeHandler := NewTradeHandler(deps.TradeSvc)
	escrowHandler := NewEscrowHandler(deps.EscrowSvc)

	// --- Accounts ---
	accounts := r.Group("/accounts")
	{
		accounts.POST("", auth, rl("accounts_write"), accountHandler.Create)
		accounts.GET("/me", auth, rl("reads"), accountHandler.GetMe)
		accounts.GET("/:id", rl("reads"), accountHandler.Get)
		accounts.PUT("/:id", auth, rl("accounts_write"), accountHandler.Update)
	}

	// --- Offers (reads open, writes owner-gated in the service layer) ---
	offers := r.Group("/offers")
	{
		offers.POST("", auth, rl("offers_write"), offerHandler.Create)
		offers.GET("", optionalAuth, rl("reads"), offerHandler.List)
		offers.GET("/:id", rl("reads"), offerHandler.Get)
		offers.PUT("/:id", auth, rl("offers_write"), offerHandler.Update)
		offers.DELETE("/:id", auth, rl("offers_write"), offerHandler.Delete)
	}

	// --- Trades ---
	trades := r.Group("/trades")
	{
		trades.POST("", auth, rl("trades_write"), tradeHandler.Initiate)
		trades.GET("", rl("reads"), tradeHandler.List)
		trades.GET("/:id", rl("reads"), tradeHandler.Get)
		trades.PUT("/:id", auth, rl("trades_write"), tradeHandler.Update)
	}

	// --- Escrows (all role-gated in the service layer) ---
	escrows := r.Group("/escrows", auth, rl("escrows"))
	{
		escrows.POST("/create", escrowHandler.Create)
		escrows.POST("/fund", escrowHandler.Fund)
		escrows.POST("/release", escrowHandler.Release)
		escrows.POST("/cancel", escrowHandler.Cancel)
		escrows.POST("/dispute", escrowHandler.Dispute)
		escrows.GET("/:trade_id", escrowHandler.GetByTrade)
	}

	return r
}
