package util

import (
	"errors"
	"fmt"
)

// Error codes understood by the HTTP boundary.
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserExists         = "USER_EXISTS"
	CodeConfiguration      = "CONFIGURATION_ERROR"
	CodeTokenSigning       = "TOKEN_SIGNING_FAILED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, details)
}

func NewNotFound(message string) error {
	return NewDomainError(CodeNotFound, message, nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, nil)
}

// NewInvalidCredentials is shared by every login/register credential failure
// so callers cannot tell a missing account from a wrong password.
func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "Invalid credentials", nil)
}

func NewUserExists() error {
	return NewDomainError(CodeUserExists, "User already exists with this email", nil)
}

func NewConfigurationError(message string) error {
	return NewDomainError(CodeConfiguration, message, nil)
}

func NewTokenSigningError(err error) error {
	return &DomainError{Code: CodeTokenSigning, Message: "failed to sign token", Err: err}
}

func NewRateLimited(message string) error {
	return NewDomainError(CodeRateLimited, message, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:    CodeInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
