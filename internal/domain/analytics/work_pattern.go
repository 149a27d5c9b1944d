package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WorkPatternSchemaVersion is bumped whenever the derivation of a
// WorkPattern changes; rows with an older version are treated as stale.
const WorkPatternSchemaVersion = 2

// WorkPattern is the derived behavioral profile of one user over the
// lookback window. HourHistogram and DayHistogram each sum to
// ActivitiesExamined.
type WorkPattern struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	Topics           datatypes.JSONSlice[string]    `gorm:"column:topics" json:"topics"`
	Skills           datatypes.JSONSlice[string]    `gorm:"column:skills" json:"skills"`
	ActiveProjectIDs datatypes.JSONSlice[uuid.UUID] `gorm:"column:active_project_ids" json:"active_project_ids"`
	CollaboratorIDs  datatypes.JSONSlice[uuid.UUID] `gorm:"column:collaborator_ids" json:"collaborator_ids"`

	// ActiveHours is the top-5 hour summary; ActiveDays lists every weekday
	// with activity. Both are ordered by count descending.
	ActiveHours   datatypes.JSONSlice[int] `gorm:"column:active_hours" json:"active_hours"`
	ActiveDays    datatypes.JSONSlice[int] `gorm:"column:active_days" json:"active_days"`
	HourHistogram datatypes.JSONSlice[int] `gorm:"column:hour_histogram" json:"hour_histogram"`
	DayHistogram  datatypes.JSONSlice[int] `gorm:"column:day_histogram" json:"day_histogram"`

	ActivityCounts        datatypes.JSONType[map[string]int] `gorm:"column:activity_counts" json:"activity_counts"`
	ActivitiesExamined    int                                `gorm:"column:activities_examined;not null" json:"activities_examined"`
	KnowledgeSharingScore int                                `gorm:"column:knowledge_sharing_score;not null" json:"knowledge_sharing_score"`

	LastAnalyzedAt time.Time `gorm:"column:last_analyzed_at;not null;index" json:"last_analyzed_at"`
	SchemaVersion  int       `gorm:"column:schema_version;not null" json:"schema_version"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (WorkPattern) TableName() string { return "work_pattern" }

// Counts returns the per-kind activity counts, never nil.
func (p *WorkPattern) Counts() map[string]int {
	if p == nil {
		return map[string]int{}
	}
	m := p.ActivityCounts.Data()
	if m == nil {
		return map[string]int{}
	}
	return m
}
