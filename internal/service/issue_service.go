package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

const (
	msgTitleDescriptionRequired = "Title and description are required"
	msgIssueNotFound            = "Issue not found"
	msgNotAuthorizedUpdate      = "Not authorized to update this issue"
	msgNotAuthorizedDelete      = "Not authorized to delete this issue"
)

// Patch keys that UpdateIssue accepts. Anything else is dropped.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStatus      = "status"
	FieldPriority    = "priority"
	FieldType        = "type"
	FieldAssignee    = "assignee"
	FieldProject     = "project"
	FieldDueDate     = "dueDate"
	FieldLabels      = "labels"
)

var updatableFields = []string{
	FieldTitle, FieldDescription, FieldStatus, FieldPriority, FieldType,
	FieldAssignee, FieldProject, FieldDueDate, FieldLabels,
}

// IssueService coordinates issue workflows.
type IssueService struct {
	issues     repository.IssueRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo  repository.IssueRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// IssueCreateInput describes issue creation payload. Zero values take defaults.
type IssueCreateInput struct {
	Title       string
	Description string
	Status      domain.IssueStatus
	Priority    domain.IssuePriority
	Type        domain.IssueType
	Assignee    *string
	Reporter    string
	Project     string
	DueDate     *time.Time
	Labels      []string
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{
		issues:     deps.IssueRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateIssue validates input, applies defaults and stores the issue. The
// reporter is taken as given; callers set it from the authenticated user.
func (s *IssueService) CreateIssue(ctx context.Context, input IssueCreateInput) (*domain.Issue, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError(msgTitleDescriptionRequired, nil)
	}

	issue := &domain.Issue{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      input.Status,
		Priority:    input.Priority,
		Type:        input.Type,
		AssigneeID:  input.Assignee,
		ReporterID:  input.Reporter,
		Project:     input.Project,
		DueDate:     input.DueDate,
		Labels:      trimLabels(input.Labels),
	}
	if issue.Status == "" {
		issue.Status = domain.IssueStatusOpen
	}
	if issue.Priority == "" {
		issue.Priority = domain.IssuePriorityMedium
	}
	if issue.Type == "" {
		issue.Type = domain.IssueTypeTask
	}
	if issue.AssigneeID != nil && *issue.AssigneeID == "" {
		issue.AssigneeID = nil
	}
	if issue.Project == "" {
		issue.Project = domain.DefaultProject
	}
	if issue.Labels == nil {
		issue.Labels = []string{}
	}
	if err := validateEnums(issue.Status, issue.Priority, issue.Type); err != nil {
		return nil, err
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, invalidField(FieldAssignee)
		}
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: issue.ID,
		ActorID: issue.ReporterID,
		Payload: events.IssueCreatedPayload{
			Title:    issue.Title,
			Project:  issue.Project,
			Priority: issue.Priority,
			Assignee: issue.AssigneeID,
		},
	})
	return issue, nil
}

// GetIssueByID fetches one issue with its references expanded.
func (s *IssueService) GetIssueByID(ctx context.Context, id string) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(msgIssueNotFound)
		}
		return nil, err
	}
	return issue, nil
}

// GetIssues lists issues newest first. page is floored at 1 and limit is
// clamped into [1, MaxLimit]; the filter is passed through untouched.
func (s *IssueService) GetIssues(ctx context.Context, filter domain.IssueFilter, page, limit int) (*domain.IssuePage, error) {
	if page < 1 {
		page = 1
	}
	return s.issues.List(ctx, filter, page, clampLimit(limit))
}

// UpdateIssue applies an allow-listed patch on behalf of callerID, who must be
// the issue's reporter. Keys outside the allow-list are dropped silently.
func (s *IssueService) UpdateIssue(ctx context.Context, id string, patch map[string]any, callerID string) (*domain.Issue, error) {
	current, err := s.GetIssueByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.ReporterID != callerID {
		return nil, apperrors.NewForbidden(msgNotAuthorizedUpdate)
	}

	filtered := FilterPatch(patch)
	update, err := BuildIssueUpdate(filtered)
	if err != nil {
		return nil, err
	}

	updated, err := s.issues.Update(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFound(msgIssueNotFound)
		case errors.Is(err, repository.ErrInvalidReference):
			return nil, invalidField(FieldAssignee)
		}
		return nil, err
	}

	if len(filtered) > 0 {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventIssueUpdated,
			IssueID: id,
			ActorID: callerID,
			Payload: events.IssueUpdatedPayload{Fields: patchFields(filtered)},
		})
	}
	if update.Status != nil && *update.Status != current.Status {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventIssueStatusChanged,
			IssueID: id,
			ActorID: callerID,
			Payload: events.IssueStatusChangedPayload{OldStatus: current.Status, NewStatus: *update.Status},
		})
	}
	return updated, nil
}

// DeleteIssue removes an issue on behalf of its reporter and reports whether
// the store deleted anything.
func (s *IssueService) DeleteIssue(ctx context.Context, id, callerID string) (bool, error) {
	current, err := s.GetIssueByID(ctx, id)
	if err != nil {
		return false, err
	}
	if current.ReporterID != callerID {
		return false, apperrors.NewForbidden(msgNotAuthorizedDelete)
	}

	deleted, err := s.issues.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventIssueDeleted,
			IssueID: id,
			ActorID: callerID,
			Payload: events.IssueDeletedPayload{Title: current.Title, Project: current.Project},
		})
	}
	return deleted, nil
}

// GetIssueStats counts issues per status, optionally within one project.
func (s *IssueService) GetIssueStats(ctx context.Context, project *string) (domain.IssueStats, error) {
	return s.issues.Stats(ctx, project)
}

// FilterPatch keeps only the updatable keys of patch.
func FilterPatch(patch map[string]any) map[string]any {
	filtered := make(map[string]any, len(patch))
	for _, key := range updatableFields {
		if value, ok := patch[key]; ok {
			filtered[key] = value
		}
	}
	return filtered
}

func patchFields(patch map[string]any) []string {
	fields := make([]string, 0, len(patch))
	for _, key := range updatableFields {
		if _, ok := patch[key]; ok {
			fields = append(fields, key)
		}
	}
	return fields
}

func validateEnums(status domain.IssueStatus, priority domain.IssuePriority, issueType domain.IssueType) error {
	if !status.Valid() {
		return invalidField(FieldStatus)
	}
	if !priority.Valid() {
		return invalidField(FieldPriority)
	}
	if !issueType.Valid() {
		return invalidField(FieldType)
	}
	return nil
}

func (s *IssueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("issue event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("issue_id", event.IssueID),
			zap.Error(err))
	}
}
