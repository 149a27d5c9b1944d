package people

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

type ProfileRepo interface {
	Upsert(dbc dbctx.Context, row *types.UserProfile) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UserProfile, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.UserProfile, error)
	ListActive(dbc dbctx.Context) ([]*types.UserProfile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *profileRepo) Upsert(dbc dbctx.Context, row *types.UserProfile) error {
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name",
				"department",
				"skills",
				"active",
				"last_active_at",
				"updated_at",
			}),
		}).
		Create(row).Error
}

// GetByID returns nil, nil when the profile does not exist.
func (r *profileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UserProfile, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.UserProfile
	if err := dbc.Conn(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *profileRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.UserProfile, error) {
	out := []*types.UserProfile{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).Where("id IN ?", ids).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *profileRepo) ListActive(dbc dbctx.Context) ([]*types.UserProfile, error) {
	out := []*types.UserProfile{}
	if err := dbc.Conn(r.db).Where("active = ?", true).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
