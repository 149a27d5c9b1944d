package work

import (
	"time"

	"github.com/google/uuid"
)

type DependencyKind string

const (
	DependencyTechnical DependencyKind = "technical"
	DependencyKnowledge DependencyKind = "knowledge"
)

// Dependency records that a project relies on a shared technical component
// or knowledge item, identified by a free-form key ("postgres", a knowledge
// item id, ...).
type Dependency struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_work_dependency_key,priority:1" json:"project_id"`
	DependencyKey string         `gorm:"column:dependency_key;not null;uniqueIndex:idx_work_dependency_key,priority:2;index" json:"dependency_key"`
	Kind          DependencyKind `gorm:"column:kind;not null" json:"kind"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

func (Dependency) TableName() string { return "work_dependency" }

// SharedDependency is a project that shares at least one dependency with a
// target project.
type SharedDependency struct {
	ProjectID uuid.UUID `json:"project_id"`
	Keys      []string  `json:"keys"`
}
