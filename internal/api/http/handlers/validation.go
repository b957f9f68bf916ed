package handlers

import (
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

const minPasswordLength = 6

// FieldError is one failed boundary check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type fieldErrors []FieldError

func (e *fieldErrors) add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// respond writes the 400 body and reports whether anything failed.
func (e fieldErrors) respond(c *fiber.Ctx) (bool, error) {
	if len(e) == 0 {
		return false, nil
	}
	return true, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"errors":  e,
	})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"errors":  []FieldError{{Field: "body", Message: "Request body must be valid JSON"}},
	})
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email, "@")
}

func checkEnums(errs *fieldErrors, status, priority, issueType *string) {
	if status != nil && !domain.IssueStatus(*status).Valid() {
		errs.add("status", "Invalid status value")
	}
	if priority != nil && !domain.IssuePriority(*priority).Valid() {
		errs.add("priority", "Invalid priority value")
	}
	if issueType != nil && !domain.IssueType(*issueType).Valid() {
		errs.add("type", "Invalid type value")
	}
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
