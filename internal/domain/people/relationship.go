package people

import (
	"time"

	"github.com/google/uuid"
)

type RelationshipStatus string

const (
	RelationshipConnected RelationshipStatus = "connected"
	RelationshipPending   RelationshipStatus = "pending"
	RelationshipDeclined  RelationshipStatus = "declined"
)

// Relationship is a directed connection request; "connected" rows are
// mutual. Readers treat the pair as unordered.
type Relationship struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_relationship_pair,priority:1" json:"user_id"`
	TargetUserID uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_relationship_pair,priority:2;index" json:"target_user_id"`
	Status       RelationshipStatus `gorm:"column:status;not null;index" json:"status"`
	CreatedAt    time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time          `gorm:"not null" json:"updated_at"`
}

func (Relationship) TableName() string { return "relationship" }

// Other returns the member of the pair that is not userID.
func (r *Relationship) Other(userID uuid.UUID) uuid.UUID {
	if r.UserID == userID {
		return r.TargetUserID
	}
	return r.UserID
}

// Blocks reports whether the relationship excludes the pair from
// suggestions.
func (r *Relationship) Blocks() bool {
	return r.Status == RelationshipConnected || r.Status == RelationshipPending
}
