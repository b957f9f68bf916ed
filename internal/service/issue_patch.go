package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// Listing bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// NormalizePage reads a page number the lenient way query strings are usually
// read: leading whitespace and trailing garbage are ignored, and anything that
// does not yield a positive integer becomes page 1.
func NormalizePage(raw string) int {
	n, ok := leadingInt(raw)
	if !ok || n < 1 {
		return DefaultPage
	}
	return n
}

// NormalizeLimit reads a page size. A missing or non-numeric value becomes
// DefaultLimit; numbers are clamped into [1, MaxLimit].
func NormalizeLimit(raw string) int {
	n, ok := leadingInt(raw)
	if !ok {
		return DefaultLimit
	}
	return clampLimit(n)
}

func clampLimit(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// leadingInt parses an optional sign followed by decimal digits at the start
// of raw. Values too large to matter saturate.
func leadingInt(raw string) (int, bool) {
	s := strings.TrimLeft(raw, " \t\n\r")
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		digits++
		if n < 1_000_000_000 {
			n = n*10 + int(r-'0')
		}
	}
	if digits == 0 {
		return 0, false
	}
	if negative {
		n = -n
	}
	return n, true
}

// BuildIssueUpdate converts an allow-listed patch into a typed update. Values
// come either from decoded JSON (strings, []any, nil) or from Go callers
// using the domain types directly.
func BuildIssueUpdate(patch map[string]any) (domain.IssueUpdate, error) {
	var update domain.IssueUpdate

	for key, value := range patch {
		switch key {
		case FieldTitle:
			title, ok := asString(value)
			if !ok || strings.TrimSpace(title) == "" {
				return update, invalidField(key)
			}
			title = strings.TrimSpace(title)
			update.Title = &title
		case FieldDescription:
			description, ok := asString(value)
			if !ok || strings.TrimSpace(description) == "" {
				return update, invalidField(key)
			}
			description = strings.TrimSpace(description)
			update.Description = &description
		case FieldProject:
			project, ok := asString(value)
			if !ok || strings.TrimSpace(project) == "" {
				return update, invalidField(key)
			}
			project = strings.TrimSpace(project)
			update.Project = &project
		case FieldStatus:
			raw, ok := asString(value)
			status := domain.IssueStatus(raw)
			if !ok || !status.Valid() {
				return update, invalidField(key)
			}
			update.Status = &status
		case FieldPriority:
			raw, ok := asString(value)
			priority := domain.IssuePriority(raw)
			if !ok || !priority.Valid() {
				return update, invalidField(key)
			}
			update.Priority = &priority
		case FieldType:
			raw, ok := asString(value)
			issueType := domain.IssueType(raw)
			if !ok || !issueType.Valid() {
				return update, invalidField(key)
			}
			update.Type = &issueType
		case FieldAssignee:
			assignee, err := asOptionalString(value)
			if err != nil {
				return update, invalidField(key)
			}
			update.Assignee = &assignee
		case FieldDueDate:
			due, err := asOptionalTime(value)
			if err != nil {
				return update, invalidField(key)
			}
			update.DueDate = &due
		case FieldLabels:
			labels, err := asLabels(value)
			if err != nil {
				return update, invalidField(key)
			}
			update.Labels = &labels
		}
	}
	return update, nil
}

func invalidField(field string) error {
	return apperrors.NewValidationError(
		fmt.Sprintf("Invalid value for %s", field),
		map[string]any{"field": field},
	)
}

func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case domain.IssueStatus:
		return string(v), true
	case domain.IssuePriority:
		return string(v), true
	case domain.IssueType:
		return string(v), true
	}
	return "", false
}

// asOptionalString treats nil and "" as clearing the reference.
func asOptionalString(value any) (*string, error) {
	if p, isPtr := value.(*string); value == nil || (isPtr && p == nil) {
		return nil, nil
	}
	s, ok := asString(value)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", value)
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return &s, nil
}

var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02"}

// ParseDueDate accepts RFC 3339 timestamps and plain dates. An empty string
// means no due date.
func ParseDueDate(raw string) (*time.Time, error) {
	return asOptionalTime(raw)
}

func asOptionalTime(value any) (*time.Time, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return &v, nil
	case *time.Time:
		return v, nil
	}
	s, ok := asString(value)
	if !ok {
		return nil, fmt.Errorf("expected date, got %T", value)
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparseable date %q", s)
}

func trimLabels(labels []string) []string {
	if labels == nil {
		return nil
	}
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		out = append(out, strings.TrimSpace(label))
	}
	return out
}

func asLabels(value any) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return trimLabels(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			label, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("label must be a string, got %T", item)
			}
			out = append(out, strings.TrimSpace(label))
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected list, got %T", value)
}
