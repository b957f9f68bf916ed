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

// IssuesHandler exposes issue endpoints. Every route requires a principal.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// CreateIssue POST /api/issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Not authorized")
	}
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	var errs fieldErrors
	if strings.TrimSpace(req.Title) == "" {
		errs.add("title", "Title is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		errs.add("description", "Description is required")
	}
	checkEnums(&errs, nonEmpty(req.Status), nonEmpty(req.Priority), nonEmpty(req.Type))
	input := service.IssueCreateInput{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Status:      domain.IssueStatus(req.Status),
		Priority:    domain.IssuePriority(req.Priority),
		Type:        domain.IssueType(req.Type),
		Assignee:    req.Assignee,
		Reporter:    principal.User.ID,
		Project:     strings.TrimSpace(req.Project),
		Labels:      req.Labels,
	}
	if req.DueDate != nil {
		due, err := service.ParseDueDate(*req.DueDate)
		if err != nil {
			errs.add("dueDate", "Invalid date")
		}
		input.DueDate = due
	}
	if failed, err := errs.respond(c); failed {
		return err
	}

	issue, err := h.service.CreateIssue(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    dto.NewIssueResponse(issue),
	})
}

// ListIssues GET /api/issues.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	page := service.NormalizePage(c.Query("page"))
	limit := service.NormalizeLimit(c.Query("limit"))
	filter := domain.IssueFilter{
		Status:   domain.IssueStatus(c.Query("status")),
		Priority: domain.IssuePriority(c.Query("priority")),
		Project:  c.Query("project"),
		Assignee: c.Query("assignee"),
	}

	result, err := h.service.GetIssues(c.UserContext(), filter, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    dto.NewIssueList(result.Issues),
		"pagination": dto.Pagination{
			Page:       result.Page,
			Limit:      limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
		},
	})
}

// GetIssue GET /api/issues/:id.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	issue, err := h.service.GetIssueByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.NewIssueResponse(issue)})
}

// UpdateIssue PUT /api/issues/:id. Title and description must be present on
// every update; keys outside the updatable set are ignored.
func (h *IssuesHandler) UpdateIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Not authorized")
	}
	patch := map[string]any{}
	if err := c.BodyParser(&patch); err != nil {
		return invalidBody(c)
	}

	var errs fieldErrors
	if s, ok := patch[service.FieldTitle].(string); !ok || strings.TrimSpace(s) == "" {
		errs.add("title", "Title is required")
	}
	if s, ok := patch[service.FieldDescription].(string); !ok || strings.TrimSpace(s) == "" {
		errs.add("description", "Description is required")
	} else {
		patch[service.FieldDescription] = strings.TrimSpace(s)
	}
	checkEnums(&errs, stringField(patch, service.FieldStatus), stringField(patch, service.FieldPriority), stringField(patch, service.FieldType))
	if failed, err := errs.respond(c); failed {
		return err
	}

	issue, err := h.service.UpdateIssue(c.UserContext(), c.Params("id"), patch, principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": dto.NewIssueResponse(issue)})
}

// DeleteIssue DELETE /api/issues/:id.
func (h *IssuesHandler) DeleteIssue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Not authorized")
	}
	deleted, err := h.service.DeleteIssue(c.UserContext(), c.Params("id"), principal.User.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFound("Issue not found")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Issue deleted successfully."})
}

// Stats GET /api/issues/stats.
func (h *IssuesHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.GetIssueStats(c.UserContext(), nonEmpty(c.Query("project")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": stats})
}

// stringField returns the value under key when present. Non-string values
// come back as an impossible enum so the enum check reports them.
func stringField(patch map[string]any, key string) *string {
	value, ok := patch[key]
	if !ok || value == nil {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		invalid := ""
		return &invalid
	}
	return &s
}
