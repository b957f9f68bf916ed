package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

const msgPasswordTooLong = "Password must be at most 72 bytes"

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
}

// RegisterInput carries a new account's details.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// ProfileInput carries a partial profile change. Nil fields are left alone.
type ProfileInput struct {
	Name  *string
	Email *string
}

// NewAuthService builds the service. It fails when the signing secret or the
// token lifetime is not usable.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) (*AuthService, error) {
	tokens, err := auth.NewTokenManager(cfg)
	if err != nil {
		return nil, err
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   tokens,
		bcryptCost: cfg.BcryptCost,
	}, nil
}

// Register creates an account and signs a session token for it.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Session, error) {
	if input.Email == "" || input.Password == "" {
		return nil, apperrors.NewInvalidCredentials()
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewUserExists()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err := domain.NewUser(input.Name, input.Email, input.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, domain.ErrPasswordTooLong) {
			return nil, apperrors.NewValidationError(msgPasswordTooLong, map[string]any{"field": "password"})
		}
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.session(user)
}

// Login verifies credentials. Unknown email and wrong password fail the same
// way so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	if email == "" || password == "" {
		return nil, apperrors.NewInvalidCredentials()
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewInvalidCredentials()
		}
		return nil, err
	}

	ok, err := user.ComparePassword(password)
	if err != nil {
		return nil, fmt.Errorf("verify password for user %s: %w", user.ID, err)
	}
	if !ok {
		return nil, apperrors.NewInvalidCredentials()
	}
	return s.session(user)
}

// CurrentUser returns the user with the given id, or nil when there is none.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes name and/or email of an existing account.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, input ProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("Name cannot be empty", map[string]any{"field": "name"})
		}
		user.Name = name
	}
	if input.Email != nil && *input.Email != user.Email {
		existing, err := s.users.GetByEmail(ctx, *input.Email)
		switch {
		case err == nil && existing.ID != user.ID:
			return nil, apperrors.NewUserExists()
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
		user.Email = *input.Email
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewUserExists()
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) session(user *domain.User) (*domain.Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &domain.Session{User: user.Public(), Token: token, ExpiresAt: exp}, nil
}
