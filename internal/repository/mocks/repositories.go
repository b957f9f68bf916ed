// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

// UserRepository is a mock of repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (m *UserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

// IssueRepository is a mock of repository.IssueRepository.
type IssueRepository struct {
	mock.Mock
}

var _ repository.IssueRepository = (*IssueRepository)(nil)

func (m *IssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	args := m.Called(ctx, issue)
	return args.Error(0)
}

func (m *IssueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	args := m.Called(ctx, id)
	issue, _ := args.Get(0).(*domain.Issue)
	return issue, args.Error(1)
}

func (m *IssueRepository) List(ctx context.Context, filter domain.IssueFilter, page, limit int) (*domain.IssuePage, error) {
	args := m.Called(ctx, filter, page, limit)
	result, _ := args.Get(0).(*domain.IssuePage)
	return result, args.Error(1)
}

func (m *IssueRepository) Update(ctx context.Context, id string, update domain.IssueUpdate) (*domain.Issue, error) {
	args := m.Called(ctx, id, update)
	issue, _ := args.Get(0).(*domain.Issue)
	return issue, args.Error(1)
}

func (m *IssueRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *IssueRepository) Stats(ctx context.Context, project *string) (domain.IssueStats, error) {
	args := m.Called(ctx, project)
	stats, _ := args.Get(0).(domain.IssueStats)
	return stats, args.Error(1)
}
