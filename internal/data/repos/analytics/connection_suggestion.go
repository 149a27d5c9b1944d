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

type SuggestionRepo interface {
	// CreateIfAbsent inserts row unless an un-dismissed suggestion for the
	// same (source, target) already exists. It reports whether a row was
	// written.
	CreateIfAbsent(dbc dbctx.Context, row *types.ConnectionSuggestion) (bool, error)
	ListOpen(dbc dbctx.Context, sourceUserID uuid.UUID, limit int) ([]*types.ConnectionSuggestion, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ConnectionSuggestion, error)
	SetDismissed(dbc dbctx.Context, sourceUserID, id uuid.UUID) (bool, error)
	SetAccepted(dbc dbctx.Context, sourceUserID, id uuid.UUID) (bool, error)
}

type suggestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSuggestionRepo(db *gorm.DB, baseLog *logger.Logger) SuggestionRepo {
	return &suggestionRepo{db: db, log: baseLog.With("repo", "SuggestionRepo")}
}

func (r *suggestionRepo) CreateIfAbsent(dbc dbctx.Context, row *types.ConnectionSuggestion) (bool, error) {
	if row == nil || row.SourceUserID == uuid.Nil || row.TargetUserID == uuid.Nil {
		return false, nil
	}
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	// The partial unique index only covers open rows, so the conflict
	// target carries the same predicate.
	res := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "source_user_id"}, {Name: "target_user_id"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "is_dismissed = false"}}},
			DoNothing:   true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *suggestionRepo) ListOpen(dbc dbctx.Context, sourceUserID uuid.UUID, limit int) ([]*types.ConnectionSuggestion, error) {
	out := []*types.ConnectionSuggestion{}
	if sourceUserID == uuid.Nil {
		return out, nil
	}
	q := dbc.Conn(r.db).
		Where("source_user_id = ? AND is_dismissed = ?", sourceUserID, false).
		Order("score DESC, created_at DESC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *suggestionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ConnectionSuggestion, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.ConnectionSuggestion
	if err := dbc.Conn(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *suggestionRepo) SetDismissed(dbc dbctx.Context, sourceUserID, id uuid.UUID) (bool, error) {
	return r.update(dbc, sourceUserID, id, map[string]any{"is_dismissed": true})
}

func (r *suggestionRepo) SetAccepted(dbc dbctx.Context, sourceUserID, id uuid.UUID) (bool, error) {
	return r.update(dbc, sourceUserID, id, map[string]any{"is_accepted": true})
}

func (r *suggestionRepo) update(dbc dbctx.Context, sourceUserID, id uuid.UUID, updates map[string]any) (bool, error) {
	if sourceUserID == uuid.Nil || id == uuid.Nil {
		return false, nil
	}
	updates["updated_at"] = time.Now().UTC()
	res := dbc.Conn(r.db).
		Model(&types.ConnectionSuggestion{}).
		Where("id = ? AND source_user_id = ?", id, sourceUserID).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
