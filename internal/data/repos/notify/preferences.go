package notify

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

type PreferencesRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.NotificationPreferences, error)
	Upsert(dbc dbctx.Context, row *types.NotificationPreferences) error
}

type preferencesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferencesRepo(db *gorm.DB, baseLog *logger.Logger) PreferencesRepo {
	return &preferencesRepo{db: db, log: baseLog.With("repo", "NotificationPreferencesRepo")}
}

// GetByUserID returns nil, nil when the user has never saved preferences.
func (r *preferencesRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.NotificationPreferences, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.NotificationPreferences
	if err := dbc.Conn(r.db).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *preferencesRepo) Upsert(dbc dbctx.Context, row *types.NotificationPreferences) error {
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"similar_work",
				"connection_suggestions",
				"collaboration_opportunities",
				"expertise_match",
				"updated_at",
			}),
		}).
		Create(row).Error
}
