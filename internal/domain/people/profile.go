package people

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Profile is the slice of a user's profile the engine reads: identity,
// declared skills and department.
type Profile struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	DisplayName  string                      `gorm:"column:display_name;not null" json:"display_name"`
	Department   string                      `gorm:"column:department" json:"department,omitempty"`
	Skills       datatypes.JSONSlice[string] `gorm:"column:skills" json:"skills"`
	Active       bool                        `gorm:"column:active;not null;index" json:"active"`
	LastActiveAt *time.Time                  `gorm:"column:last_active_at" json:"last_active_at,omitempty"`
	CreatedAt    time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time                   `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "user_profile" }

func (p *Profile) HasDepartment() bool {
	return p != nil && strings.TrimSpace(p.Department) != ""
}
