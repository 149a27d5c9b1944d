package analytics

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

type WorkPatternRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.WorkPattern, error)
	// Upsert replaces the user's pattern as a whole, keyed by user_id.
	Upsert(dbc dbctx.Context, row *types.WorkPattern) error
}

type workPatternRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkPatternRepo(db *gorm.DB, baseLog *logger.Logger) WorkPatternRepo {
	return &workPatternRepo{db: db, log: baseLog.With("repo", "WorkPatternRepo")}
}

func (r *workPatternRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.WorkPattern, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.WorkPattern
	if err := dbc.Conn(r.db).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *workPatternRepo) Upsert(dbc dbctx.Context, row *types.WorkPattern) error {
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"id",
				"topics",
				"skills",
				"active_project_ids",
				"collaborator_ids",
				"active_hours",
				"active_days",
				"hour_histogram",
				"day_histogram",
				"activity_counts",
				"activities_examined",
				"knowledge_sharing_score",
				"last_analyzed_at",
				"schema_version",
				"updated_at",
			}),
		}).
		Create(row).Error
}
