package mongorepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

type issueRepository struct {
	issues *mongo.Collection
	users  *mongo.Collection
}

// NewIssueRepository instantiates a MongoDB-backed repository.
func NewIssueRepository(db *mongo.Database) repository.IssueRepository {
	return &issueRepository{
		issues: db.Collection(issuesCollection),
		users:  db.Collection(usersCollection),
	}
}

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	doc, err := newIssueDocument(issue, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}
	res, err := r.issues.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("failed to create issue: unexpected id type %T", res.InsertedID)
	}
	issue.ID = oid.Hex()
	issue.CreatedAt = doc.CreatedAt
	issue.UpdatedAt = doc.UpdatedAt
	if issue.Labels == nil {
		issue.Labels = []string{}
	}
	return nil
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc issueDocument
	if err := r.issues.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}
	issues, err := r.expand(ctx, []issueDocument{doc})
	if err != nil {
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}
	return &issues[0], nil
}

func (r *issueRepository) List(ctx context.Context, filter domain.IssueFilter, page, limit int) (*domain.IssuePage, error) {
	query := issueFilterDocument(filter)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(repository.Offset(page, limit))).
		SetLimit(int64(limit))

	cursor, err := r.issues.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find issues: %w", err)
	}
	var docs []issueDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to find issues: %w", err)
	}
	total, err := r.issues.CountDocuments(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find issues: %w", err)
	}
	issues, err := r.expand(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to find issues: %w", err)
	}

	return &domain.IssuePage{
		Issues:     issues,
		Total:      total,
		Page:       page,
		TotalPages: repository.TotalPages(total, limit),
	}, nil
}

func (r *issueRepository) Update(ctx context.Context, id string, update domain.IssueUpdate) (*domain.Issue, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	set, err := issueUpdateDocument(update, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc issueDocument
	err = r.issues.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}
	issues, err := r.expand(ctx, []issueDocument{doc})
	if err != nil {
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}
	return &issues[0], nil
}

func (r *issueRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	res, err := r.issues.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, fmt.Errorf("failed to delete issue: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *issueRepository) Stats(ctx context.Context, project *string) (domain.IssueStats, error) {
	cursor, err := r.issues.Aggregate(ctx, statsPipeline(project))
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	var groups []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	stats := domain.IssueStats{}
	for _, g := range groups {
		stats[g.Status] = g.Count
	}
	return stats, nil
}

// expand resolves reporter and assignee references for docs.
func (r *issueRepository) expand(ctx context.Context, docs []issueDocument) ([]domain.Issue, error) {
	seen := map[primitive.ObjectID]struct{}{}
	var ids []primitive.ObjectID
	for _, doc := range docs {
		candidates := []primitive.ObjectID{doc.Reporter}
		if doc.Assignee != nil {
			candidates = append(candidates, *doc.Assignee)
		}
		for _, id := range candidates {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	refs, err := loadRefs(ctx, r.users, ids)
	if err != nil {
		return nil, err
	}
	issues := make([]domain.Issue, 0, len(docs))
	for _, doc := range docs {
		issues = append(issues, doc.toDomain(refs))
	}
	return issues, nil
}

func issueFilterDocument(filter domain.IssueFilter) bson.M {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.Priority != "" {
		query["priority"] = string(filter.Priority)
	}
	if filter.Project != "" {
		query["project"] = filter.Project
	}
	if filter.Assignee != "" {
		if oid, err := primitive.ObjectIDFromHex(filter.Assignee); err == nil {
			query["assignee"] = oid
		} else {
			// Stored assignees are ObjectIDs, so a malformed id matches nothing.
			query["assignee"] = filter.Assignee
		}
	}
	return query
}

func issueUpdateDocument(update domain.IssueUpdate, now time.Time) (bson.M, error) {
	set := bson.M{"updatedAt": now}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Status != nil {
		set["status"] = string(*update.Status)
	}
	if update.Priority != nil {
		set["priority"] = string(*update.Priority)
	}
	if update.Type != nil {
		set["type"] = string(*update.Type)
	}
	if update.Assignee != nil {
		oid, err := optionalObjectID(*update.Assignee)
		if err != nil {
			return nil, fmt.Errorf("invalid assignee id: %w", err)
		}
		if oid == nil {
			set["assignee"] = nil
		} else {
			set["assignee"] = *oid
		}
	}
	if update.Project != nil {
		set["project"] = *update.Project
	}
	if update.DueDate != nil {
		if *update.DueDate == nil {
			set["dueDate"] = nil
		} else {
			set["dueDate"] = **update.DueDate
		}
	}
	if update.Labels != nil {
		labels := *update.Labels
		if labels == nil {
			labels = []string{}
		}
		set["labels"] = labels
	}
	return set, nil
}

func statsPipeline(project *string) mongo.Pipeline {
	match := bson.D{}
	if project != nil && *project != "" {
		match = bson.D{{Key: "project", Value: *project}}
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}
