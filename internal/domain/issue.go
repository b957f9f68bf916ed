package domain

import "time"

// IssueStatus enumerates where an issue stands. Any status may follow any other.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in-progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusClosed     IssueStatus = "closed"
)

// IssuePriority enumerates urgency.
type IssuePriority string

const (
	IssuePriorityLow      IssuePriority = "low"
	IssuePriorityMedium   IssuePriority = "medium"
	IssuePriorityHigh     IssuePriority = "high"
	IssuePriorityCritical IssuePriority = "critical"
)

// IssueType enumerates the kind of work tracked.
type IssueType string

const (
	IssueTypeBug     IssueType = "bug"
	IssueTypeFeature IssueType = "feature"
	IssueTypeTask    IssueType = "task"
	IssueTypeStory   IssueType = "story"
)

// DefaultProject is assigned when an issue is created without a project.
const DefaultProject = "Default"

// Valid reports whether s is a known status.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed:
		return true
	}
	return false
}

// Valid reports whether p is a known priority.
func (p IssuePriority) Valid() bool {
	switch p {
	case IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh, IssuePriorityCritical:
		return true
	}
	return false
}

// Valid reports whether t is a known type.
func (t IssueType) Valid() bool {
	switch t {
	case IssueTypeBug, IssueTypeFeature, IssueTypeTask, IssueTypeStory:
		return true
	}
	return false
}

// UserRef is the expanded view of a referenced user.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Issue is the aggregate for tracked work. ReporterID and AssigneeID are weak
// references into the user directory; Reporter and Assignee are filled by the
// directory on reads.
type Issue struct {
	ID          string
	Title       string
	Description string
	Status      IssueStatus
	Priority    IssuePriority
	Type        IssueType
	AssigneeID  *string
	ReporterID  string
	Assignee    *UserRef
	Reporter    *UserRef
	Project     string
	DueDate     *time.Time
	Labels      []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IssueFilter narrows issue listings. Empty fields match everything.
type IssueFilter struct {
	Status   IssueStatus
	Priority IssuePriority
	Project  string
	Assignee string
}

// IssuePage is one page of a listing.
type IssuePage struct {
	Issues     []Issue
	Total      int64
	Page       int
	TotalPages int
}

// IssueUpdate is a typed, allow-listed patch. Only non-nil fields are written.
// Assignee and DueDate use a second level of indirection so a patch can clear them.
type IssueUpdate struct {
	Title       *string
	Description *string
	Status      *IssueStatus
	Priority    *IssuePriority
	Type        *IssueType
	Assignee    **string
	Project     *string
	DueDate     **time.Time
	Labels      *[]string
}

// Empty reports whether the update changes nothing.
func (u IssueUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil &&
		u.Priority == nil && u.Type == nil && u.Assignee == nil &&
		u.Project == nil && u.DueDate == nil && u.Labels == nil
}

// IssueStats maps a status to the number of issues in it.
type IssueStats map[string]int64
