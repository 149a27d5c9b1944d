package work

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

type WorkItemRepo interface {
	Create(dbc dbctx.Context, row *types.WorkItem) error
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.WorkItem, error)
	// ListByKindExcludingOwner returns items of kind not owned by ownerID,
	// newest first. limit <= 0 means no limit.
	ListByKindExcludingOwner(dbc dbctx.Context, kind types.WorkKind, ownerID uuid.UUID, limit int) ([]*types.WorkItem, error)
	ListByKind(dbc dbctx.Context, kind types.WorkKind) ([]*types.WorkItem, error)
}

type workItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkItemRepo(db *gorm.DB, baseLog *logger.Logger) WorkItemRepo {
	return &workItemRepo{db: db, log: baseLog.With("repo", "WorkItemRepo")}
}

func (r *workItemRepo) Create(dbc dbctx.Context, row *types.WorkItem) error {
	if row == nil {
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
	return dbc.Conn(r.db).Create(row).Error
}

func (r *workItemRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.WorkItem, error) {
	out := []*types.WorkItem{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).Where("id IN ?", ids).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *workItemRepo) ListByKindExcludingOwner(dbc dbctx.Context, kind types.WorkKind, ownerID uuid.UUID, limit int) ([]*types.WorkItem, error) {
	out := []*types.WorkItem{}
	q := dbc.Conn(r.db).Where("kind = ? AND owner_user_id <> ?", kind, ownerID).Order("created_at DESC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *workItemRepo) ListByKind(dbc dbctx.Context, kind types.WorkKind) ([]*types.WorkItem, error) {
	out := []*types.WorkItem{}
	if err := dbc.Conn(r.db).Where("kind = ?", kind).Order("created_at DESC, id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
