package auth

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/repository/mocks"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

func newProtectedApp(t *testing.T, users repository.UserRepository) (*fiber.App, *TokenManager) {
	t.Helper()
	tokens, err := NewTokenManager(config.AuthConfig{JWTSecret: "s3cret", JWTExpire: "1h"})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if apperrors.HasCode(err, apperrors.CodeUnauthorized) {
				return c.Status(fiber.StatusUnauthorized).SendString(err.Error())
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})
	mw := NewAuthMiddleware(tokens, users)
	app.Get("/me", mw.Handle, func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return errors.New("no principal")
		}
		return c.SendString(principal.User.ID)
	})
	return app, tokens
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	users := &mocks.UserRepository{}
	app, tokens := newProtectedApp(t, users)
	token, _, err := tokens.GenerateToken("u1")
	require.NoError(t, err)

	users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1"}, nil).Once()

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	users.AssertExpectations(t)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"empty bearer":   "Bearer ",
		"garbage token":  "Bearer not-a-jwt",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			users := &mocks.UserRepository{}
			app, _ := newProtectedApp(t, users)

			req := httptest.NewRequest("GET", "/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := app.Test(req)

			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthMiddleware_UnknownUser(t *testing.T) {
	users := &mocks.UserRepository{}
	app, tokens := newProtectedApp(t, users)
	token, _, err := tokens.GenerateToken("gone")
	require.NoError(t, err)

	users.On("GetByID", mock.Anything, "gone").Return(nil, repository.ErrNotFound).Once()

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
