package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// CreateIssueRequest payload for POST /api/issues.
type CreateIssueRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Type        string   `json:"type"`
	Assignee    *string  `json:"assignee"`
	Project     string   `json:"project"`
	DueDate     *string  `json:"dueDate"`
	Labels      []string `json:"labels"`
}

// IssueResponse is the wire form of an issue. Reporter and assignee are
// expanded when the referenced user still exists.
type IssueResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Priority    string          `json:"priority"`
	Type        string          `json:"type"`
	Assignee    *domain.UserRef `json:"assignee"`
	Reporter    *domain.UserRef `json:"reporter"`
	Project     string          `json:"project"`
	DueDate     *time.Time      `json:"dueDate"`
	Labels      []string        `json:"labels"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Pagination describes the page a list response carries.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewIssueResponse converts a domain issue. A reference whose user is gone
// is rendered with the id only.
func NewIssueResponse(issue *domain.Issue) IssueResponse {
	labels := issue.Labels
	if labels == nil {
		labels = []string{}
	}
	resp := IssueResponse{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Status:      string(issue.Status),
		Priority:    string(issue.Priority),
		Type:        string(issue.Type),
		Assignee:    issue.Assignee,
		Reporter:    issue.Reporter,
		Project:     issue.Project,
		DueDate:     issue.DueDate,
		Labels:      labels,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}
	if resp.Reporter == nil && issue.ReporterID != "" {
		resp.Reporter = &domain.UserRef{ID: issue.ReporterID}
	}
	if resp.Assignee == nil && issue.AssigneeID != nil {
		resp.Assignee = &domain.UserRef{ID: *issue.AssigneeID}
	}
	return resp
}

// NewIssueList converts a page of issues.
func NewIssueList(issues []domain.Issue) []IssueResponse {
	out := make([]IssueResponse, 0, len(issues))
	for i := range issues {
		out = append(out, NewIssueResponse(&issues[i]))
	}
	return out
}
