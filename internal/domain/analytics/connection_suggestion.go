package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SignalKind string

const (
	SignalTopic         SignalKind = "topic"
	SignalSkill         SignalKind = "skill"
	SignalComplementary SignalKind = "complementary"
	SignalDepartment    SignalKind = "department"
)

// ConnectionSuggestion recommends TargetUserID to SourceUserID. Score is the
// raw additive score; Confidence is Score clamped to 0..100. At most one
// un-dismissed row exists per (source, target).
type ConnectionSuggestion struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	SourceUserID    uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_suggestion_open_pair,priority:1,where:is_dismissed = false" json:"source_user_id"`
	TargetUserID    uuid.UUID                   `gorm:"type:uuid;not null;uniqueIndex:idx_suggestion_open_pair,priority:2,where:is_dismissed = false" json:"target_user_id"`
	Score           int                         `gorm:"column:score;not null" json:"score"`
	Confidence      int                         `gorm:"column:confidence;not null" json:"confidence"`
	Reason          string                      `gorm:"column:reason;not null" json:"reason"`
	SignalKind      SignalKind                  `gorm:"column:signal_kind;not null" json:"signal_kind"`
	SharedInterests datatypes.JSONSlice[string] `gorm:"column:shared_interests" json:"shared_interests"`
	IsDismissed     bool                        `gorm:"column:is_dismissed;not null;index" json:"is_dismissed"`
	IsAccepted      bool                        `gorm:"column:is_accepted;not null" json:"is_accepted"`
	CreatedAt       time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time                   `gorm:"not null" json:"updated_at"`
}

func (ConnectionSuggestion) TableName() string { return "connection_suggestion" }
