package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type InsightKind string

const (
	InsightSharedTeam         InsightKind = "shared_team"
	InsightCommonDependencies InsightKind = "common_dependencies"
	InsightKnowledgeTransfer  InsightKind = "knowledge_transfer"
	InsightTimelineRisk       InsightKind = "timeline_risk"
)

// Insight is an explainable finding for a user, optionally scoped to a
// project. Rows are deduplicated on (user_id, project_key, kind, title) and
// are only served while ExpiresAt is in the future.
type Insight struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_insight_dedup,priority:1" json:"user_id"`
	ProjectID     *uuid.UUID     `gorm:"type:uuid" json:"project_id,omitempty"`
	ProjectKey    string         `gorm:"column:project_key;not null;uniqueIndex:idx_insight_dedup,priority:2" json:"-"`
	Kind          InsightKind    `gorm:"column:kind;not null;uniqueIndex:idx_insight_dedup,priority:3" json:"kind"`
	Title         string         `gorm:"column:title;not null;uniqueIndex:idx_insight_dedup,priority:4" json:"title"`
	Description   string         `gorm:"column:description;not null" json:"description"`
	ActionLabel   string         `gorm:"column:action_label" json:"action_label,omitempty"`
	ActionPayload datatypes.JSON `gorm:"column:action_payload" json:"action_payload,omitempty"`
	PriorityScore int            `gorm:"column:priority_score;not null" json:"priority_score"`
	ExpiresAt     time.Time      `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

func (Insight) TableName() string { return "insight" }

// ProjectKeyFor is the non-null cache/dedup key for an optional project.
func ProjectKeyFor(projectID *uuid.UUID) string {
	if projectID == nil || *projectID == uuid.Nil {
		return ""
	}
	return projectID.String()
}
