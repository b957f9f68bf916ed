package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdateRequest payload for profile changes.
type UserUpdateRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	User      domain.PublicUser `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// NewAuthResponse flattens a session for the wire.
func NewAuthResponse(session *domain.Session) AuthResponse {
	return AuthResponse{User: session.User, Token: session.Token, ExpiresAt: session.ExpiresAt}
}
