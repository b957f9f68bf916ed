package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/config"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

func TestNewTokenManager_MissingSecret(t *testing.T) {
	_, err := NewTokenManager(config.AuthConfig{JWTExpire: "7d"})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfiguration))
	assert.Equal(t, "JWT_SECRET is not defined", err.Error())
}

func TestNewTokenManager_BadExpiry(t *testing.T) {
	_, err := NewTokenManager(config.AuthConfig{JWTSecret: "s", JWTExpire: "soon"})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfiguration))
}

func TestNewTokenManager_DefaultsToSevenDays(t *testing.T) {
	tm, err := NewTokenManager(config.AuthConfig{JWTSecret: "s"})
	require.NoError(t, err)

	assert.Equal(t, 7*24*time.Hour, tm.TTL())
}

func TestGenerateToken_ZeroManager(t *testing.T) {
	var tm TokenManager

	_, _, err := tm.GenerateToken("u1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfiguration))
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	tm, err := NewTokenManager(config.AuthConfig{JWTSecret: "secret", JWTExpire: "1h"})
	require.NoError(t, err)

	token, exp, err := tm.GenerateToken("user-42")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, "user-42", claims.Subject)
}

func TestParseToken_RejectsOtherSecret(t *testing.T) {
	issuer, err := NewTokenManager(config.AuthConfig{JWTSecret: "one"})
	require.NoError(t, err)
	verifier, err := NewTokenManager(config.AuthConfig{JWTSecret: "two"})
	require.NoError(t, err)

	token, _, err := issuer.GenerateToken("u1")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_RejectsExpired(t *testing.T) {
	tm, err := NewTokenManager(config.AuthConfig{JWTSecret: "secret", JWTExpire: "1m"})
	require.NoError(t, err)
	tm.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := tm.GenerateToken("u1")
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestGenerateToken_SigningFailure(t *testing.T) {
	tm, err := NewTokenManager(config.AuthConfig{JWTSecret: "secret"})
	require.NoError(t, err)
	// RS256 cannot sign with an HMAC byte key.
	tm.method = jwt.SigningMethodRS256

	_, _, err = tm.GenerateToken("u1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTokenSigning))
}

func TestParseExpiry(t *testing.T) {
	cases := map[string]time.Duration{
		"7d":    7 * 24 * time.Hour,
		"12h":   12 * time.Hour,
		"30m":   30 * time.Minute,
		"1h30m": 90 * time.Minute,
		"3600":  time.Hour,
		" 2d ":  48 * time.Hour,
	}
	for raw, want := range cases {
		got, err := ParseExpiry(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "0", "-5", "xd", "0d", "forever"} {
		_, err := ParseExpiry(raw)
		assert.Error(t, err, raw)
	}
}
