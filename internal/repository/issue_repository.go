package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

const issueSelect = `
        SELECT i.id::text, i.title, i.description, i.status, i.priority, i.type,
               i.assignee_id::text, i.reporter_id::text, i.project, i.due_date, i.labels,
               i.created_at, i.updated_at,
               r.name, r.email, a.name, a.email
        FROM issues i
        LEFT JOIN users r ON r.id = i.reporter_id
        LEFT JOIN users a ON a.id = i.assignee_id`

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates a Postgres-backed repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (title, description, status, priority, type, assignee_id, reporter_id, project, due_date, labels)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id::text, created_at, updated_at`
	if err := checkAssignee(issue.AssigneeID); err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}
	labels := issue.Labels
	if labels == nil {
		labels = []string{}
	}
	err := r.pool.QueryRow(ctx, query,
		issue.Title,
		issue.Description,
		issue.Status,
		issue.Priority,
		issue.Type,
		issue.AssigneeID,
		issue.ReporterID,
		issue.Project,
		issue.DueDate,
		labels,
	).Scan(&issue.ID, &issue.CreatedAt, &issue.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}
	return nil
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	rows, err := r.pool.Query(ctx, issueSelect+` WHERE i.id=$1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}
	defer rows.Close()
	issues, err := scanIssues(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}
	if len(issues) == 0 {
		return nil, ErrNotFound
	}
	return &issues[0], nil
}

func (r *issueRepository) List(ctx context.Context, filter domain.IssueFilter, page, limit int) (*domain.IssuePage, error) {
	where, args := buildIssueWhere(filter)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM issues i WHERE `+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to find issues: %w", err)
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY i.created_at DESC LIMIT %d OFFSET %d`,
		issueSelect, where, limit, Offset(page, limit))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find issues: %w", err)
	}
	defer rows.Close()
	issues, err := scanIssues(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to find issues: %w", err)
	}
	if issues == nil {
		issues = []domain.Issue{}
	}

	return &domain.IssuePage{
		Issues:     issues,
		Total:      total,
		Page:       page,
		TotalPages: TotalPages(total, limit),
	}, nil
}

func (r *issueRepository) Update(ctx context.Context, id string, update domain.IssueUpdate) (*domain.Issue, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	if update.Empty() {
		return r.GetByID(ctx, id)
	}
	if update.Assignee != nil {
		if err := checkAssignee(*update.Assignee); err != nil {
			return nil, fmt.Errorf("failed to update issue: %w", err)
		}
	}

	sets, args := buildIssueUpdate(update)
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE issues SET %s, updated_at=NOW() WHERE id=$%d`, strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *issueRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete issue: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *issueRepository) Stats(ctx context.Context, project *string) (domain.IssueStats, error) {
	query := `SELECT status, COUNT(*) FROM issues`
	var args []any
	if project != nil && *project != "" {
		query += ` WHERE project=$1`
		args = append(args, *project)
	}
	query += ` GROUP BY status`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	defer rows.Close()

	stats := domain.IssueStats{}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to get stats: %w", err)
		}
		stats[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}

// buildIssueWhere turns a filter into a WHERE clause over alias i.
func buildIssueWhere(filter domain.IssueFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("i.status=$%d", len(args)))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		clauses = append(clauses, fmt.Sprintf("i.priority=$%d", len(args)))
	}
	if filter.Project != "" {
		args = append(args, filter.Project)
		clauses = append(clauses, fmt.Sprintf("i.project=$%d", len(args)))
	}
	if filter.Assignee != "" {
		args = append(args, filter.Assignee)
		clauses = append(clauses, fmt.Sprintf("i.assignee_id::text=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

// checkAssignee rejects assignee ids the uuid column would refuse.
func checkAssignee(id *string) error {
	if id == nil || validID(*id) {
		return nil
	}
	return fmt.Errorf("assignee %q: %w", *id, ErrInvalidReference)
}

// buildIssueUpdate lists SET assignments for the non-nil fields of update.
func buildIssueUpdate(update domain.IssueUpdate) ([]string, []any) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Description != nil {
		add("description", *update.Description)
	}
	if update.Status != nil {
		add("status", *update.Status)
	}
	if update.Priority != nil {
		add("priority", *update.Priority)
	}
	if update.Type != nil {
		add("type", *update.Type)
	}
	if update.Assignee != nil {
		add("assignee_id", *update.Assignee)
	}
	if update.Project != nil {
		add("project", *update.Project)
	}
	if update.DueDate != nil {
		add("due_date", *update.DueDate)
	}
	if update.Labels != nil {
		labels := *update.Labels
		if labels == nil {
			labels = []string{}
		}
		add("labels", labels)
	}
	return sets, args
}

func scanIssues(rows pgx.Rows) ([]domain.Issue, error) {
	var result []domain.Issue
	for rows.Next() {
		var (
			issue                       domain.Issue
			reporterName, reporterEmail *string
			assigneeName, assigneeEmail *string
		)
		if err := rows.Scan(
			&issue.ID,
			&issue.Title,
			&issue.Description,
			&issue.Status,
			&issue.Priority,
			&issue.Type,
			&issue.AssigneeID,
			&issue.ReporterID,
			&issue.Project,
			&issue.DueDate,
			&issue.Labels,
			&issue.CreatedAt,
			&issue.UpdatedAt,
			&reporterName,
			&reporterEmail,
			&assigneeName,
			&assigneeEmail,
		); err != nil {
			return nil, err
		}
		if reporterName != nil {
			issue.Reporter = &domain.UserRef{ID: issue.ReporterID, Name: *reporterName, Email: deref(reporterEmail)}
		}
		if issue.AssigneeID != nil && assigneeName != nil {
			issue.Assignee = &domain.UserRef{ID: *issue.AssigneeID, Name: *assigneeName, Email: deref(assigneeEmail)}
		}
		if issue.Labels == nil {
			issue.Labels = []string{}
		}
		result = append(result, issue)
	}
	return result, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
