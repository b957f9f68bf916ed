package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// UsersHandler exposes account endpoints.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Register handles POST /api/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	var errs fieldErrors
	if req.Name == "" {
		errs.add("name", "Name is required")
	}
	if !validEmail(req.Email) {
		errs.add("email", "Valid email is required")
	}
	switch {
	case len(req.Password) < minPasswordLength:
		errs.add("password", "Password must be at least 6 characters")
	case len(req.Password) > domain.MaxPasswordBytes:
		errs.add("password", "Password must be at most 72 bytes")
	}
	if failed, err := errs.respond(c); failed {
		return err
	}

	session, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    dto.NewAuthResponse(session),
	})
}

// Login handles POST /api/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	req.Email = strings.TrimSpace(req.Email)

	var errs fieldErrors
	if !validEmail(req.Email) {
		errs.add("email", "Valid email is required")
	}
	if req.Password == "" {
		errs.add("password", "Password is required")
	}
	if failed, err := errs.respond(c); failed {
		return err
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    dto.NewAuthResponse(session),
	})
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Not authorized")
	}
	user, err := h.auth.CurrentUser(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NewNotFound("User not found")
	}
	return c.JSON(fiber.Map{"success": true, "data": user.Public()})
}

// UpdateMe handles PUT /api/users/me.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Not authorized")
	}
	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	var errs fieldErrors
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		errs.add("name", "Name cannot be empty")
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		req.Email = &email
		if !validEmail(email) {
			errs.add("email", "Valid email is required")
		}
	}
	if failed, err := errs.respond(c); failed {
		return err
	}

	user, err := h.auth.UpdateProfile(c.UserContext(), principal.User.ID, service.ProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": user.Public()})
}
