package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
)

// The collaborator interfaces below are the narrow views the engine needs.
// The gorm repos in internal/data/repos satisfy them; tests use in-memory
// fakes.

type ActivityFeed interface {
	ListByUser(dbc dbctx.Context, userID uuid.UUID, since, until time.Time) ([]*types.ActivityRecord, error)
	ListBySubjects(dbc dbctx.Context, subjectIDs []uuid.UUID, since, until time.Time) ([]*types.ActivityRecord, error)
	ActiveUserIDs(dbc dbctx.Context, since time.Time) ([]uuid.UUID, error)
}

type ActivityLog interface {
	CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.ActivityRecord) (int, error)
}

type ProfileStore interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UserProfile, error)
	ListActive(dbc dbctx.Context) ([]*types.UserProfile, error)
}

type RelationshipStore interface {
	ListForUser(dbc dbctx.Context, userID uuid.UUID, statuses ...types.RelationshipStatus) ([]*types.Relationship, error)
}

type WorkItemStore interface {
	Create(dbc dbctx.Context, row *types.WorkItem) error
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.WorkItem, error)
	ListByKindExcludingOwner(dbc dbctx.Context, kind types.WorkKind, ownerID uuid.UUID, limit int) ([]*types.WorkItem, error)
	ListByKind(dbc dbctx.Context, kind types.WorkKind) ([]*types.WorkItem, error)
}

// DependencyGraph answers "which other projects share dependencies with this
// one". It is backed by Neo4j when configured and by the relational store
// otherwise.
type DependencyGraph interface {
	SharedWith(ctx context.Context, projectID uuid.UUID) ([]types.SharedDependency, error)
}

type WorkPatternStore interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.WorkPattern, error)
	Upsert(dbc dbctx.Context, row *types.WorkPattern) error
}

type SuggestionStore interface {
	CreateIfAbsent(dbc dbctx.Context, row *types.ConnectionSuggestion) (bool, error)
	ListOpen(dbc dbctx.Context, sourceUserID uuid.UUID, limit int) ([]*types.ConnectionSuggestion, error)
	SetDismissed(dbc dbctx.Context, sourceUserID, id uuid.UUID) (bool, error)
	SetAccepted(dbc dbctx.Context, sourceUserID, id uuid.UUID) (bool, error)
}

type InsightStore interface {
	ListFresh(dbc dbctx.Context, userID uuid.UUID, projectKey string, now time.Time) ([]*types.Insight, error)
	Upsert(dbc dbctx.Context, rows []*types.Insight) error
}

type NotificationStore interface {
	CreateIfAbsent(dbc dbctx.Context, row *types.Notification) (bool, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, error)
	CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	MarkRead(dbc dbctx.Context, userID, id uuid.UUID, at time.Time) (bool, error)
	MarkAllRead(dbc dbctx.Context, userID uuid.UUID, at time.Time) (int64, error)
	Delete(dbc dbctx.Context, userID, id uuid.UUID) (bool, error)
}

type PreferenceStore interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.NotificationPreferences, error)
	Upsert(dbc dbctx.Context, row *types.NotificationPreferences) error
}
