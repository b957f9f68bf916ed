package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEmail is returned when a user write violates email uniqueness.
	ErrDuplicateEmail = errors.New("repository: email already in use")
	// ErrInvalidReference is returned when a user reference is not a well-formed id.
	ErrInvalidReference = errors.New("repository: malformed user reference")
)

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// IssueRepository encapsulates issue persistence. Reads expand the reporter
// and assignee references to name and email.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	List(ctx context.Context, filter domain.IssueFilter, page, limit int) (*domain.IssuePage, error)
	Update(ctx context.Context, id string, update domain.IssueUpdate) (*domain.Issue, error)
	Delete(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context, project *string) (domain.IssueStats, error)
}

// TotalPages is ceil(total/limit).
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Offset converts a 1-based page into a skip count.
func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
