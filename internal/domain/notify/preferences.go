package notify

import (
	"time"

	"github.com/google/uuid"
)

// Preferences holds the per-category opt-ins. A user without a row gets
// DefaultPreferences.
type Preferences struct {
	ID                         uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	UserID                     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	SimilarWork                bool      `gorm:"column:similar_work;not null" json:"similar_work"`
	ConnectionSuggestions      bool      `gorm:"column:connection_suggestions;not null" json:"connection_suggestions"`
	CollaborationOpportunities bool      `gorm:"column:collaboration_opportunities;not null" json:"collaboration_opportunities"`
	ExpertiseMatch             bool      `gorm:"column:expertise_match;not null" json:"expertise_match"`
	UpdatedAt                  time.Time `gorm:"not null" json:"updated_at"`
}

func (Preferences) TableName() string { return "notification_preferences" }

func DefaultPreferences(userID uuid.UUID) *Preferences {
	return &Preferences{
		UserID:                     userID,
		SimilarWork:                true,
		ConnectionSuggestions:      true,
		CollaborationOpportunities: true,
		ExpertiseMatch:             true,
	}
}

// Allows reports whether notifications of kind k are enabled.
func (p *Preferences) Allows(k Kind) bool {
	if p == nil {
		return true
	}
	switch k {
	case KindSimilarWork:
		return p.SimilarWork
	case KindConnectionSuggestion:
		return p.ConnectionSuggestions
	case KindCollaborationOpportunity:
		return p.CollaborationOpportunities
	case KindExpertiseMatch:
		return p.ExpertiseMatch
	default:
		return false
	}
}

// Patch is a partial update; nil fields keep their current value.
type Patch struct {
	SimilarWork                *bool `json:"similar_work,omitempty"`
	ConnectionSuggestions      *bool `json:"connection_suggestions,omitempty"`
	CollaborationOpportunities *bool `json:"collaboration_opportunities,omitempty"`
	ExpertiseMatch             *bool `json:"expertise_match,omitempty"`
}

func (p Patch) Empty() bool {
	return p.SimilarWork == nil && p.ConnectionSuggestions == nil &&
		p.CollaborationOpportunities == nil && p.ExpertiseMatch == nil
}

// Apply returns a copy of prefs with the patch applied.
func (p Patch) Apply(prefs *Preferences) *Preferences {
	out := *prefs
	if p.SimilarWork != nil {
		out.SimilarWork = *p.SimilarWork
	}
	if p.ConnectionSuggestions != nil {
		out.ConnectionSuggestions = *p.ConnectionSuggestions
	}
	if p.CollaborationOpportunities != nil {
		out.CollaborationOpportunities = *p.CollaborationOpportunities
	}
	if p.ExpertiseMatch != nil {
		out.ExpertiseMatch = *p.ExpertiseMatch
	}
	return &out
}
