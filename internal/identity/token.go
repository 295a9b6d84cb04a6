package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"

	"github.com/arklim/dispatch-console-auth/internal/core/domain"
	"github.com/arklim/dispatch-console-auth/internal/infra/config"
)

// ErrInvalidToken indicates a token that failed signature, shape, or expiry
// checks. Callers treat all three the same way.
var ErrInvalidToken = errors.New("invalid token")

// Claims carries the identity payload. Actor holds the original super-admin's
// user ID while an impersonated credential is in use.
type Claims struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Actor      string `json:"act,omitempty"`

	jwt.RegisteredClaims
}

// TokenManager mints and parses HMAC-signed access tokens. The console core
// never inspects token contents; only the identity backend does.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager constructs a manager from the configured secret and TTL.
func NewTokenManager(cfg config.JWTSettings) (*TokenManager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}

	ttl := cfg.AccessTokenTTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}

	return &TokenManager{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// WithClock injects a custom clock (primarily for testing).
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	if now != nil {
		m.now = now
	}
	return m
}

// Mint issues a signed token for the user. A non-empty actorID marks the
// token as impersonated on behalf of that super-admin.
func (m *TokenManager) Mint(user domain.User, actorID string) (string, error) {
	issuedAt := m.now().UTC()

	claims := Claims{
		Name:       user.Name,
		Email:      user.Email,
		Role:       string(user.Role),
		Department: user.Department,
		Actor:      actorID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the token's signature and expiry and returns its claims.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
