package work

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Kind distinguishes the two kinds of work the engine compares.
type Kind string

const (
	KindKnowledgeItem Kind = "knowledge_item"
	KindProject       Kind = "project"
)

func (k Kind) Valid() bool {
	return k == KindKnowledgeItem || k == KindProject
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown work kind %q", s)
	}
	return k, nil
}

// WorkItem is a knowledge item or project owned by a user. Titles and tags
// feed similar-work detection; tags and category feed work-pattern topics.
type WorkItem struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUserID uuid.UUID                   `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Kind        Kind                        `gorm:"column:kind;not null;index" json:"kind"`
	Title       string                      `gorm:"column:title;not null" json:"title"`
	Category    string                      `gorm:"column:category" json:"category,omitempty"`
	Tags        datatypes.JSONSlice[string] `gorm:"column:tags" json:"tags"`
	CreatedAt   time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"not null" json:"updated_at"`
}

func (WorkItem) TableName() string { return "work_item" }

// Labels returns the item's tags plus its category, unnormalized.
func (w *WorkItem) Labels() []string {
	if w == nil {
		return nil
	}
	out := make([]string, 0, len(w.Tags)+1)
	out = append(out, w.Tags...)
	if c := strings.TrimSpace(w.Category); c != "" {
		out = append(out, c)
	}
	return out
}
