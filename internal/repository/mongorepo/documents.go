// Package mongorepo implements the user and issue repositories on MongoDB.
package mongorepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

const (
	usersCollection  = "users"
	issuesCollection = "issues"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

type issueDocument struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty"`
	Title       string              `bson:"title"`
	Description string              `bson:"description"`
	Status      string              `bson:"status"`
	Priority    string              `bson:"priority"`
	Type        string              `bson:"type"`
	Assignee    *primitive.ObjectID `bson:"assignee"`
	Reporter    primitive.ObjectID  `bson:"reporter"`
	Project     string              `bson:"project"`
	DueDate     *time.Time          `bson:"dueDate"`
	Labels      []string            `bson:"labels"`
	CreatedAt   time.Time           `bson:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt"`
}

// EnsureIndexes creates the unique email index and the issue listing indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = db.Collection(issuesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "project", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create issues indexes: %w", err)
	}
	return nil
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// toDomain converts a stored issue; refs supplies expanded users by id.
func (d issueDocument) toDomain(refs map[primitive.ObjectID]domain.UserRef) domain.Issue {
	issue := domain.Issue{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.IssueStatus(d.Status),
		Priority:    domain.IssuePriority(d.Priority),
		Type:        domain.IssueType(d.Type),
		ReporterID:  d.Reporter.Hex(),
		Project:     d.Project,
		DueDate:     d.DueDate,
		Labels:      d.Labels,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if issue.Labels == nil {
		issue.Labels = []string{}
	}
	if ref, ok := refs[d.Reporter]; ok {
		r := ref
		issue.Reporter = &r
	}
	if d.Assignee != nil {
		id := d.Assignee.Hex()
		issue.AssigneeID = &id
		if ref, ok := refs[*d.Assignee]; ok {
			a := ref
			issue.Assignee = &a
		}
	}
	return issue
}

func newIssueDocument(issue *domain.Issue, now time.Time) (issueDocument, error) {
	reporter, err := primitive.ObjectIDFromHex(issue.ReporterID)
	if err != nil {
		return issueDocument{}, fmt.Errorf("invalid reporter id %q: %w", issue.ReporterID, err)
	}
	assignee, err := optionalObjectID(issue.AssigneeID)
	if err != nil {
		return issueDocument{}, fmt.Errorf("invalid assignee id: %w", err)
	}
	labels := issue.Labels
	if labels == nil {
		labels = []string{}
	}
	return issueDocument{
		Title:       issue.Title,
		Description: issue.Description,
		Status:      string(issue.Status),
		Priority:    string(issue.Priority),
		Type:        string(issue.Type),
		Assignee:    assignee,
		Reporter:    reporter,
		Project:     issue.Project,
		DueDate:     issue.DueDate,
		Labels:      labels,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func optionalObjectID(id *string) (*primitive.ObjectID, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	oid, err := primitive.ObjectIDFromHex(*id)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", *id, repository.ErrInvalidReference)
	}
	return &oid, nil
}
