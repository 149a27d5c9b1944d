package notify

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Kind string

const (
	KindSimilarWork              Kind = "similar_work"
	KindConnectionSuggestion     Kind = "connection_suggestion"
	KindCollaborationOpportunity Kind = "collaboration_opportunity"
	KindExpertiseMatch           Kind = "expertise_match"
)

func (k Kind) Valid() bool {
	switch k {
	case KindSimilarWork, KindConnectionSuggestion, KindCollaborationOpportunity, KindExpertiseMatch:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Notification is a stored, user-facing record. Only IsRead/ReadAt and the
// soft-delete marker change after creation. (user_id, dedup_key) is unique,
// including deleted rows, so a dismissed notification is never recreated.
type Notification struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_notification_user_created,priority:1;uniqueIndex:idx_notification_dedup,priority:1" json:"user_id"`
	DedupKey    string         `gorm:"column:dedup_key;not null;uniqueIndex:idx_notification_dedup,priority:2" json:"-"`
	Kind        Kind           `gorm:"column:kind;not null" json:"kind"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Message     string         `gorm:"column:message;not null" json:"message"`
	Metadata    datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	Priority    Priority       `gorm:"column:priority;not null" json:"priority"`
	IsRead      bool           `gorm:"column:is_read;not null;index" json:"is_read"`
	ReadAt      *time.Time     `gorm:"column:read_at" json:"read_at,omitempty"`
	ActionURL   string         `gorm:"column:action_url" json:"action_url,omitempty"`
	ActionLabel string         `gorm:"column:action_label" json:"action_label,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index:idx_notification_user_created,priority:2" json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Notification) TableName() string { return "notification" }
