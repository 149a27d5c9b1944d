package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

// RecordRepo is the append-only activity feed.
type RecordRepo interface {
	CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.ActivityRecord) (int, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, since, until time.Time) ([]*types.ActivityRecord, error)
	ListBySubjects(dbc dbctx.Context, subjectIDs []uuid.UUID, since, until time.Time) ([]*types.ActivityRecord, error)
	ActiveUserIDs(dbc dbctx.Context, since time.Time) ([]uuid.UUID, error)
}

type recordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecordRepo {
	return &recordRepo{db: db, log: baseLog.With("repo", "ActivityRecordRepo")}
}

func (r *recordRepo) CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.ActivityRecord) (int, error) {
	if len(rows) == 0 {
		return 0, nil
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
	res := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "client_event_id"}},
			DoNothing: true,
		}).
		Create(&rows)
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// ListByUser returns the user's records with since <= occurred_at < until,
// oldest first.
func (r *recordRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, since, until time.Time) ([]*types.ActivityRecord, error) {
	out := []*types.ActivityRecord{}
	if userID == uuid.Nil {
		return out, nil
	}
	err := dbc.Conn(r.db).
		Where("user_id = ? AND occurred_at >= ? AND occurred_at < ?", userID, since.UTC(), until.UTC()).
		Order("occurred_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordRepo) ListBySubjects(dbc dbctx.Context, subjectIDs []uuid.UUID, since, until time.Time) ([]*types.ActivityRecord, error) {
	out := []*types.ActivityRecord{}
	if len(subjectIDs) == 0 {
		return out, nil
	}
	err := dbc.Conn(r.db).
		Where("subject_id IN ? AND occurred_at >= ? AND occurred_at < ?", subjectIDs, since.UTC(), until.UTC()).
		Order("occurred_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordRepo) ActiveUserIDs(dbc dbctx.Context, since time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := dbc.Conn(r.db).
		Model(&types.ActivityRecord{}).
		Where("occurred_at >= ?", since.UTC()).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
