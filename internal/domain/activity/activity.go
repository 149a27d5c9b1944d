package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/workpulse-backend/internal/domain/work"
)

type Kind string

const (
	KindView        Kind = "view"
	KindEdit        Kind = "edit"
	KindCollaborate Kind = "collaborate"
	KindContribute  Kind = "contribute"
	KindComment     Kind = "comment"
)

// Kinds lists every activity kind in a stable order.
var Kinds = []Kind{KindView, KindEdit, KindCollaborate, KindContribute, KindComment}

func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if k == v {
			return true
		}
	}
	return false
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown activity kind %q", s)
	}
	return k, nil
}

// Record is one append-only activity event produced by the messaging, Q&A
// and knowledge-item surfaces. ClientEventID makes re-delivery idempotent.
type Record struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_activity_user_time,priority:1;uniqueIndex:idx_activity_client_event,priority:1" json:"user_id"`
	ClientEventID   string         `gorm:"column:client_event_id;not null;uniqueIndex:idx_activity_client_event,priority:2" json:"client_event_id"`
	SubjectID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_activity_subject_time,priority:1" json:"subject_id"`
	SubjectKind     work.Kind      `gorm:"column:subject_kind;not null" json:"subject_kind"`
	Kind            Kind           `gorm:"column:kind;not null" json:"kind"`
	OccurredAt      time.Time      `gorm:"not null;index:idx_activity_user_time,priority:2;index:idx_activity_subject_time,priority:2" json:"occurred_at"`
	DurationSeconds *int           `gorm:"column:duration_seconds" json:"duration_seconds,omitempty"`
	Metadata        datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
}

func (Record) TableName() string { return "activity_record" }
