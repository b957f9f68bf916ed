package mongorepo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

func TestIssueFilterDocument(t *testing.T) {
	assert.Equal(t, bson.M{}, issueFilterDocument(domain.IssueFilter{}))

	assignee := primitive.NewObjectID()
	got := issueFilterDocument(domain.IssueFilter{
		Status:   domain.IssueStatusOpen,
		Priority: domain.IssuePriorityLow,
		Project:  "Apollo",
		Assignee: assignee.Hex(),
	})
	assert.Equal(t, bson.M{
		"status":   "open",
		"priority": "low",
		"project":  "Apollo",
		"assignee": assignee,
	}, got)

	got = issueFilterDocument(domain.IssueFilter{Assignee: "not-an-id"})
	assert.Equal(t, "not-an-id", got["assignee"])
}

func TestIssueUpdateDocument(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	title := "Renamed"
	status := domain.IssueStatusClosed
	var noAssignee *string
	var noDue *time.Time
	labels := []string{"ui"}

	set, err := issueUpdateDocument(domain.IssueUpdate{
		Title:    &title,
		Status:   &status,
		Assignee: &noAssignee,
		DueDate:  &noDue,
		Labels:   &labels,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, bson.M{
		"updatedAt": now,
		"title":     "Renamed",
		"status":    "closed",
		"assignee":  nil,
		"dueDate":   nil,
		"labels":    []string{"ui"},
	}, set)
}

func TestIssueUpdateDocument_InvalidAssignee(t *testing.T) {
	bad := "zzz"
	badPtr := &bad

	_, err := issueUpdateDocument(domain.IssueUpdate{Assignee: &badPtr}, time.Now())
	assert.ErrorIs(t, err, repository.ErrInvalidReference)
}

func TestNewIssueDocument_InvalidAssignee(t *testing.T) {
	bad := "bob"

	_, err := newIssueDocument(&domain.Issue{
		ReporterID: primitive.NewObjectID().Hex(),
		AssigneeID: &bad,
	}, time.Now())

	assert.ErrorIs(t, err, repository.ErrInvalidReference)
}

func TestNewIssueDocument(t *testing.T) {
	reporter := primitive.NewObjectID()
	now := time.Now().UTC()

	doc, err := newIssueDocument(&domain.Issue{
		Title:       "t",
		Description: "d",
		Status:      domain.IssueStatusOpen,
		Priority:    domain.IssuePriorityMedium,
		Type:        domain.IssueTypeTask,
		ReporterID:  reporter.Hex(),
		Project:     domain.DefaultProject,
	}, now)
	require.NoError(t, err)

	assert.Equal(t, reporter, doc.Reporter)
	assert.Nil(t, doc.Assignee)
	assert.Equal(t, []string{}, doc.Labels)
	assert.Equal(t, now, doc.CreatedAt)

	_, err = newIssueDocument(&domain.Issue{ReporterID: "user123"}, now)
	assert.Error(t, err)
}

func TestIssueDocumentToDomain_ExpandsRefs(t *testing.T) {
	reporter := primitive.NewObjectID()
	assignee := primitive.NewObjectID()
	doc := issueDocument{
		ID:       primitive.NewObjectID(),
		Title:    "t",
		Status:   "in-progress",
		Reporter: reporter,
		Assignee: &assignee,
	}
	refs := map[primitive.ObjectID]domain.UserRef{
		reporter: {ID: reporter.Hex(), Name: "Rita", Email: "rita@example.com"},
	}

	issue := doc.toDomain(refs)

	assert.Equal(t, domain.IssueStatusInProgress, issue.Status)
	require.NotNil(t, issue.Reporter)
	assert.Equal(t, "Rita", issue.Reporter.Name)
	require.NotNil(t, issue.AssigneeID)
	assert.Equal(t, assignee.Hex(), *issue.AssigneeID)
	assert.Nil(t, issue.Assignee, "assignee without a user record stays unexpanded")
	assert.Equal(t, []string{}, issue.Labels)
}

func TestStatsPipeline(t *testing.T) {
	project := "Apollo"
	withProject := statsPipeline(&project)
	assert.Equal(t, bson.D{{Key: "project", Value: "Apollo"}}, withProject[0][0].Value)

	empty := ""
	assert.Equal(t, bson.D{}, statsPipeline(&empty)[0][0].Value)
	assert.Equal(t, bson.D{}, statsPipeline(nil)[0][0].Value)
}
