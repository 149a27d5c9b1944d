package work

import (
	"time"

	"github.com/google/uuid"
)

// SimilarWorkAlert is generated on demand when a new work item resembles one
// owned by someone else. It is not persisted; it only feeds notifications.
type SimilarWorkAlert struct {
	SubjectUserID    uuid.UUID `json:"subject_user_id"`
	RelatedUserID    uuid.UUID `json:"related_user_id"`
	WorkKind         Kind      `json:"work_kind"`
	RelatedWorkID    uuid.UUID `json:"related_work_id"`
	RelatedWorkTitle string    `json:"related_work_title"`
	Similarity       int       `json:"similarity"`
	Reason           string    `json:"reason"`
	CreatedAt        time.Time `json:"created_at"`
	IsRead           bool      `json:"is_read"`
}
