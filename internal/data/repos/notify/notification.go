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

type NotificationRepo interface {
	// CreateIfAbsent inserts row unless (user_id, dedup_key) already exists,
	// deleted rows included.
	CreateIfAbsent(dbc dbctx.Context, row *types.Notification) (bool, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, error)
	CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	MarkRead(dbc dbctx.Context, userID, id uuid.UUID, at time.Time) (bool, error)
	MarkAllRead(dbc dbctx.Context, userID uuid.UUID, at time.Time) (int64, error)
	Delete(dbc dbctx.Context, userID, id uuid.UUID) (bool, error)
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (r *notificationRepo) CreateIfAbsent(dbc dbctx.Context, row *types.Notification) (bool, error) {
	if row == nil || row.UserID == uuid.Nil {
		return false, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.DedupKey == "" {
		row.DedupKey = row.ID.String()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	res := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "dedup_key"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *notificationRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, error) {
	out := []*types.Notification{}
	if userID == uuid.Nil {
		return out, nil
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := dbc.Conn(r.db).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if err := q.Order("created_at DESC, id ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationRepo) CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.Conn(r.db).
		Model(&types.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

func (r *notificationRepo) MarkRead(dbc dbctx.Context, userID, id uuid.UUID, at time.Time) (bool, error) {
	res := dbc.Conn(r.db).
		Model(&types.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Updates(map[string]any{"is_read": true, "read_at": at.UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *notificationRepo) MarkAllRead(dbc dbctx.Context, userID uuid.UUID, at time.Time) (int64, error) {
	res := dbc.Conn(r.db).
		Model(&types.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": at.UTC()})
	return res.RowsAffected, res.Error
}

// Delete soft-deletes so the dedup key stays reserved.
func (r *notificationRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) (bool, error) {
	res := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&types.Notification{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
