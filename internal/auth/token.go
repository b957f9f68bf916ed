package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/issue-tracker/internal/config"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// DefaultExpire applies when no expiry is configured.
const DefaultExpire = "7d"

const missingSecretMessage = "JWT_SECRET is not defined"

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	method jwt.SigningMethod
	now    func() time.Time
}

// NewTokenManager validates cfg and builds a manager. A missing secret or an
// unparseable expiry is a configuration error.
func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	if cfg.JWTSecret == "" {
		return nil, apperrors.NewConfigurationError(missingSecretMessage)
	}
	expire := cfg.JWTExpire
	if strings.TrimSpace(expire) == "" {
		expire = DefaultExpire
	}
	ttl, err := ParseExpiry(expire)
	if err != nil {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf("invalid JWT_EXPIRE %q: %v", expire, err))
	}
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		method: jwt.SigningMethodHS256,
		now:    time.Now,
	}, nil
}

// Claims describes JWT payload.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// GenerateToken builds and signs a JWT carrying the user id.
func (tm *TokenManager) GenerateToken(userID string) (string, time.Time, error) {
	if tm == nil || len(tm.secret) == 0 {
		return "", time.Time{}, apperrors.NewConfigurationError(missingSecretMessage)
	}
	now := time.Now()
	if tm.now != nil {
		now = tm.now()
	}
	method := tm.method
	if method == nil {
		method = jwt.SigningMethodHS256
	}
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(method, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, apperrors.NewTokenSigningError(err)
	}
	return tokenString, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// TTL returns the configured token lifetime.
func (tm *TokenManager) TTL() time.Duration {
	return tm.ttl
}

// ParseExpiry understands "7d", "12h", "30m", "45s", Go durations such as
// "1h30m" and bare seconds.
func ParseExpiry(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty expiry")
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, errors.New("expiry must be positive")
		}
		return time.Duration(secs) * time.Second, nil
	}
	if strings.HasSuffix(raw, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil {
			return 0, err
		}
		if days <= 0 {
			return 0, errors.New("expiry must be positive")
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("expiry must be positive")
	}
	return d, nil
}
