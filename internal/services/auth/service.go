// Package auth issues and verifies the bearer tokens that identify API
// callers. A token's subject is the caller's address.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/plyr-settlement/internal/dependencies/clock"
	"github.com/mcoot/plyr-settlement/internal/dependencies/random"
	"github.com/mcoot/plyr-settlement/internal/model"
)

// Errors
var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrZeroCaller   = errors.New("token subject must not be the zero address")
)

const (
	// DefaultIssuer is the iss claim of issued tokens
	DefaultIssuer = "plyr-settlement"

	generatedSecretLength   = 48
	generatedSecretAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Config holds configuration for the auth service
type Config struct {
	// Secret is the HS256 signing key. Empty means generate one.
	Secret   string
	TokenTTL time.Duration
	Issuer   string
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		TokenTTL: 24 * time.Hour,
		Issuer:   DefaultIssuer,
	}
}

// Token is an issued bearer token
type Token struct {
	Token     string
	Caller    model.Address
	ExpiresAt time.Time
}

// Service signs and verifies caller tokens
type Service struct {
	secret []byte
	ttl    time.Duration
	issuer string
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new auth service. rnd is only used when cfg has no secret.
func New(cfg Config, clk clock.Clock, rnd random.Random, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaults.TokenTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaults.Issuer
	}
	if cfg.Secret == "" {
		cfg.Secret = rnd.String(generatedSecretLength, generatedSecretAlphabet)
		logger.Warn("no token secret configured, generated an ephemeral one")
	}
	return &Service{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TokenTTL,
		issuer: cfg.Issuer,
		clock:  clk,
		logger: logger,
	}
}

// Issue signs a token naming caller as its subject
func (s *Service) Issue(caller model.Address) (*Token, error) {
	if caller.IsZero() {
		return nil, ErrZeroCaller
	}
	now := s.clock.Now()
	expires := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   caller.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{Token: signed, Caller: caller, ExpiresAt: expires}, nil
}

// Verify checks the token signature, issuer and lifetime and returns the
// caller it names
func (s *Service) Verify(token string) (model.Address, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		s.logger.Debug("token rejected", "error", err)
		return model.Address{}, ErrInvalidToken
	}

	caller, err := model.ParseAddress(claims.Subject)
	if err != nil || caller.IsZero() {
		return model.Address{}, ErrInvalidToken
	}
	return caller, nil
}
