package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

func TestBuildIssueWhere_Empty(t *testing.T) {
	where, args := buildIssueWhere(domain.IssueFilter{})

	assert.Equal(t, "1=1", where)
	assert.Empty(t, args)
}

func TestBuildIssueWhere_AllFields(t *testing.T) {
	where, args := buildIssueWhere(domain.IssueFilter{
		Status:   domain.IssueStatusOpen,
		Priority: domain.IssuePriorityHigh,
		Project:  "Apollo",
		Assignee: "8f14e45f-ceea-467f-a8f6-7f3b3c1d2e10",
	})

	assert.Equal(t, "1=1 AND i.status=$1 AND i.priority=$2 AND i.project=$3 AND i.assignee_id::text=$4", where)
	assert.Equal(t, []any{domain.IssueStatusOpen, domain.IssuePriorityHigh, "Apollo", "8f14e45f-ceea-467f-a8f6-7f3b3c1d2e10"}, args)
}

func TestBuildIssueUpdate(t *testing.T) {
	title := "New title"
	status := domain.IssueStatusResolved
	var noAssignee *string
	due := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	duePtr := &due
	var nilLabels []string

	sets, args := buildIssueUpdate(domain.IssueUpdate{
		Title:    &title,
		Status:   &status,
		Assignee: &noAssignee,
		DueDate:  &duePtr,
		Labels:   &nilLabels,
	})

	assert.Equal(t, []string{"title=$1", "status=$2", "assignee_id=$3", "due_date=$4", "labels=$5"}, sets)
	assert.Equal(t, "New title", args[0])
	assert.Equal(t, domain.IssueStatusResolved, args[1])
	assert.Nil(t, args[2])
	assert.Equal(t, duePtr, args[3])
	assert.Equal(t, []string{}, args[4])
}

func TestTotalPagesAndOffset(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 0, TotalPages(5, 0))

	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 20, Offset(3, 10))
	assert.Equal(t, 0, Offset(0, 10))
}

func TestValidID(t *testing.T) {
	assert.True(t, validID("8f14e45f-ceea-467f-a8f6-7f3b3c1d2e10"))
	assert.False(t, validID("issue123"))
	assert.False(t, validID(""))
}

func TestCheckAssignee(t *testing.T) {
	valid := "8f14e45f-ceea-467f-a8f6-7f3b3c1d2e10"
	bad := "bob"

	assert.NoError(t, checkAssignee(nil))
	assert.NoError(t, checkAssignee(&valid))
	assert.ErrorIs(t, checkAssignee(&bad), ErrInvalidReference)
}

func TestIssueRepository_RejectsMalformedAssignee(t *testing.T) {
	repo := &issueRepository{}
	bad := "bob"
	badPtr := &bad

	err := repo.Create(context.Background(), &domain.Issue{Title: "t", AssigneeID: &bad})
	assert.ErrorIs(t, err, ErrInvalidReference)

	_, err = repo.Update(context.Background(), "8f14e45f-ceea-467f-a8f6-7f3b3c1d2e10", domain.IssueUpdate{Assignee: &badPtr})
	assert.ErrorIs(t, err, ErrInvalidReference)
}
