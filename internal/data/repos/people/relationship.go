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

type RelationshipRepo interface {
	Upsert(dbc dbctx.Context, row *types.Relationship) error
	// ListForUser returns relationships in either direction whose status is
	// one of statuses (all statuses when empty).
	ListForUser(dbc dbctx.Context, userID uuid.UUID, statuses ...types.RelationshipStatus) ([]*types.Relationship, error)
}

type relationshipRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRelationshipRepo(db *gorm.DB, baseLog *logger.Logger) RelationshipRepo {
	return &relationshipRepo{db: db, log: baseLog.With("repo", "RelationshipRepo")}
}

func (r *relationshipRepo) Upsert(dbc dbctx.Context, row *types.Relationship) error {
	if row == nil || row.UserID == uuid.Nil || row.TargetUserID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "target_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
		}).
		Create(row).Error
}

func (r *relationshipRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID, statuses ...types.RelationshipStatus) ([]*types.Relationship, error) {
	out := []*types.Relationship{}
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.Conn(r.db).Where("(user_id = ? OR target_user_id = ?)", userID, userID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
