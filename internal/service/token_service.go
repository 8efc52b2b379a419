package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Panmoni/localsolana-api/internal/core/ports"
	"github.com/Panmoni/localsolana-api/internal/solana"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityTokenService implements ports.TokenService. It verifies the
// identity assertion issued by the external wallet-auth provider and extracts
// the blockchain credential's wallet address. It never issues tokens.
type IdentityTokenService struct {
	keys   ports.KeyProvider
	issuer string
}

// NewIdentityTokenService creates a token service validating against the
// given key provider. An empty issuer disables issuer checking.
func NewIdentityTokenService(keys ports.KeyProvider, issuer string) *IdentityTokenService {
	return &IdentityTokenService{
		keys:   keys,
		issuer: issuer,
	}
}

// Resolve validates the assertion and returns the canonical wallet address.
func (s *IdentityTokenService) Resolve(tokenString string) (string, error) {
	key, err := s.keys.Key(context.Background())
	if err != nil {
		return "", fmt.Errorf("fetching signing key: %w", err)
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	wallet, err := walletFromClaims(claims)
	if err != nil {
		return "", err
	}

	// Canonicalize so ledger lookups never depend on client spelling.
	normalized, err := solana.NormalizeWallet(wallet)
	if err != nil {
		return "", fmt.Errorf("wallet credential in token: %w", err)
	}
	return normalized, nil
}

// walletFromClaims extracts the blockchain wallet address. The assertion
// carries a verified_credentials list; the sub claim is the fallback for
// plain wallet-subject tokens.
func walletFromClaims(claims jwt.MapClaims) (string, error) {
	if creds, ok := claims["verified_credentials"].([]any); ok {
		for _, c := range creds {
			cred, ok := c.(map[string]any)
			if !ok {
				continue
			}
			if cred["format"] != "blockchain" {
				continue
			}
			if addr, ok := cred["address"].(string); ok && addr != "" {
				return addr, nil
			}
		}
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}
	return "", fmt.Errorf("no wallet credential in token")
}

// StaticKeyProvider implements ports.KeyProvider with a fixed HMAC secret.
type StaticKeyProvider struct {
	secret []byte
}

// NewStaticKeyProvider creates a provider returning the given secret.
func NewStaticKeyProvider(secret string) *StaticKeyProvider {
	return &StaticKeyProvider{secret: []byte(secret)}
}

// Key returns the configured secret.
func (p *StaticKeyProvider) Key(_ context.Context) (any, error) {
	return p.secret, nil
}

// KeyFetchFunc fetches fresh key material from its source.
type KeyFetchFunc func(ctx context.Context) (any, error)

// FileKeyFetch reads HMAC key material from a file, for deployments that
// rotate the signing secret through a mounted secret volume.
func FileKeyFetch(path string) KeyFetchFunc {
	return func(_ context.Context) (any, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading key file: %w", err)
		}
		key := bytes.TrimSpace(raw)
		if len(key) == 0 {
			return nil, fmt.Errorf("key file %s is empty", path)
		}
		return key, nil
	}
}

// RefreshingKeyProvider implements ports.KeyProvider over a fetch function
// with a time-based refresh policy. It keeps the last good key so a transient
// fetch failure does not take authentication down with it.
type RefreshingKeyProvider struct {
	fetch KeyFetchFunc
	ttl   time.Duration

	mu        sync.Mutex
	key       any
	fetchedAt time.Time
}

// NewRefreshingKeyProvider creates a provider refreshing at most every ttl.
func NewRefreshingKeyProvider(fetch KeyFetchFunc, ttl time.Duration) *RefreshingKeyProvider {
	return &RefreshingKeyProvider{fetch: fetch, ttl: ttl}
}

// Key returns the cached key, refreshing it when stale.
func (p *RefreshingKeyProvider) Key(ctx context.Context) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.key != nil && time.Since(p.fetchedAt) < p.ttl {
		return p.key, nil
	}

	key, err := p.fetch(ctx)
	if err != nil {
		if p.key != nil {
			return p.key, nil
		}
		return nil, fmt.Errorf("fetching key material: %w", err)
	}

	p.key = key
	p.fetchedAt = time.Now()
	return p.key, nil
}

var (
	_ ports.TokenService = (*IdentityTokenService)(nil)
	_ ports.KeyProvider  = (*StaticKeyProvider)(nil)
	_ ports.KeyProvider  = (*RefreshingKeyProvider)(nil)
)
