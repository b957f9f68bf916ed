package events

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated       EventType = "issue.created"
	EventIssueUpdated       EventType = "issue.updated"
	EventIssueStatusChanged EventType = "issue.status_changed"
	EventIssueDeleted       EventType = "issue.deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	Title    string               `json:"title"`
	Project  string               `json:"project"`
	Priority domain.IssuePriority `json:"priority"`
	Assignee *string              `json:"assignee,omitempty"`
}

// IssueUpdatedPayload lists the fields a patch touched.
type IssueUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	OldStatus domain.IssueStatus `json:"old_status"`
	NewStatus domain.IssueStatus `json:"new_status"`
}

// IssueDeletedPayload payload.
type IssueDeletedPayload struct {
	Title   string `json:"title"`
	Project string `json:"project"`
}
