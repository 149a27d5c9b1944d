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

type InsightRepo interface {
	// ListFresh returns the insights for (userID, projectKey) that have not
	// expired at now, highest priority first.
	ListFresh(dbc dbctx.Context, userID uuid.UUID, projectKey string, now time.Time) ([]*types.Insight, error)
	// Upsert writes rows keyed by (user_id, project_key, kind, title). A
	// refreshed row takes the incoming ID so callers can return rows as given.
	Upsert(dbc dbctx.Context, rows []*types.Insight) error
	DeleteExpired(dbc dbctx.Context, now time.Time) (int64, error)
}

type insightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInsightRepo(db *gorm.DB, baseLog *logger.Logger) InsightRepo {
	return &insightRepo{db: db, log: baseLog.With("repo", "InsightRepo")}
}

func (r *insightRepo) ListFresh(dbc dbctx.Context, userID uuid.UUID, projectKey string, now time.Time) ([]*types.Insight, error) {
	out := []*types.Insight{}
	if userID == uuid.Nil {
		return out, nil
	}
	err := dbc.Conn(r.db).
		Where("user_id = ? AND project_key = ? AND expires_at > ?", userID, projectKey, now.UTC()).
		Order("priority_score DESC, kind ASC, title ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *insightRepo) Upsert(dbc dbctx.Context, rows []*types.Insight) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "project_key"}, {Name: "kind"}, {Name: "title"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"id",
				"project_id",
				"description",
				"action_label",
				"action_payload",
				"priority_score",
				"expires_at",
			}),
		}).
		Create(&rows).Error
}

func (r *insightRepo) DeleteExpired(dbc dbctx.Context, now time.Time) (int64, error) {
	res := dbc.Conn(r.db).Where("expires_at <= ?", now.UTC()).Delete(&types.Insight{})
	return res.RowsAffected, res.Error
}
