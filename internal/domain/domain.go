// Package domain re-exports the engine's data model so callers can import a
// single package.
package domain

import (
	"github.com/yungbote/workpulse-backend/internal/domain/activity"
	"github.com/yungbote/workpulse-backend/internal/domain/analytics"
	"github.com/yungbote/workpulse-backend/internal/domain/notify"
	"github.com/yungbote/workpulse-backend/internal/domain/people"
	"github.com/yungbote/workpulse-backend/internal/domain/work"
)

type ActivityKind = activity.Kind
type ActivityRecord = activity.Record

type WorkKind = work.Kind
type WorkItem = work.WorkItem
type WorkDependency = work.Dependency
type SharedDependency = work.SharedDependency
type SimilarWorkAlert = work.SimilarWorkAlert

type UserProfile = people.Profile
type Relationship = people.Relationship
type RelationshipStatus = people.RelationshipStatus

type WorkPattern = analytics.WorkPattern
type ConnectionSuggestion = analytics.ConnectionSuggestion
type SignalKind = analytics.SignalKind
type Insight = analytics.Insight
type InsightKind = analytics.InsightKind

type Notification = notify.Notification
type NotificationKind = notify.Kind
type NotificationPriority = notify.Priority
type NotificationPreferences = notify.Preferences
type PreferencePatch = notify.Patch

const (
	ActivityView        = activity.KindView
	ActivityEdit        = activity.KindEdit
	ActivityCollaborate = activity.KindCollaborate
	ActivityContribute  = activity.KindContribute
	ActivityComment     = activity.KindComment

	WorkKindKnowledgeItem = work.KindKnowledgeItem
	WorkKindProject       = work.KindProject

	RelationshipConnected = people.RelationshipConnected
	RelationshipPending   = people.RelationshipPending
	RelationshipDeclined  = people.RelationshipDeclined

	InsightSharedTeam         = analytics.InsightSharedTeam
	InsightCommonDependencies = analytics.InsightCommonDependencies
	InsightKnowledgeTransfer  = analytics.InsightKnowledgeTransfer
	InsightTimelineRisk       = analytics.InsightTimelineRisk

	NotificationSimilarWork              = notify.KindSimilarWork
	NotificationConnectionSuggestion     = notify.KindConnectionSuggestion
	NotificationCollaborationOpportunity = notify.KindCollaborationOpportunity
	NotificationExpertiseMatch           = notify.KindExpertiseMatch
)

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&UserProfile{},
		&Relationship{},
		&WorkItem{},
		&WorkDependency{},
		&ActivityRecord{},
		&WorkPattern{},
		&ConnectionSuggestion{},
		&Insight{},
		&Notification{},
		&NotificationPreferences{},
	}
}
