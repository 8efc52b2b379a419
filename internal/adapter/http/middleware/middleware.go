package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Panmoni/localsolana-api/internal/core/ports"
	"github.com/Panmoni/localsolana-api/pkg/apperror"
	"github.com/Panmoni/localsolana-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Context keys
	CtxWallet    = "wallet_address"
	CtxRequestID = "request_id"
)

// RequestID assigns each request an id, echoed in the response header and
// in every response envelope.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(CtxRequestID, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// IdentityAuth verifies the Bearer identity assertion and stores the resolved
// wallet address in the request context. Requests without a valid assertion
// are rejected.
func IdentityAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, err := resolveWallet(c, tokenSvc)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("identity assertion rejected")
			response.Error(c, apperror.ErrAuthenticationRequired())
			c.Abort()
			return
		}

		c.Set(CtxWallet, wallet)
		c.Next()
	}
}

// OptionalIdentityAuth resolves the caller wallet when an assertion is
// present but lets anonymous requests through. Open read endpoints use it so
// caller-scoped filters still work when the client is signed in.
func OptionalIdentityAuth(tokenSvc ports.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if wallet, err := resolveWallet(c, tokenSvc); err == nil {
			c.Set(CtxWallet, wallet)
		}
		c.Next()
	}
}

func resolveWallet(c *gin.Context, tokenSvc ports.TokenService) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", apperror.ErrAuthenticationRequired()
	}
	return tokenSvc.Resolve(strings.TrimPrefix(authHeader, "Bearer "))
}

// CallerWallet returns the wallet address resolved by IdentityAuth.
func CallerWallet(c *gin.Context) (string, bool) {
	wallet := c.GetString(CtxWallet)
	return wallet, wallet != ""
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Str("request_id", c.GetString(CtxRequestID)).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_001",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize returns middleware that limits the request body size. Once the
// limit is exceeded the reader returns an error and the request fails binding.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
