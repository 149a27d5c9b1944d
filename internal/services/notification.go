package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/domain/notify"
	"github.com/yungbote/workpulse-backend/internal/observability"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/realtime"
)

// Candidate is a notification proposed by one of the engine's producers.
// Signal carries the score used to derive the priority.
type Candidate struct {
	UserID      uuid.UUID
	Kind        types.NotificationKind
	Title       string
	Message     string
	Metadata    map[string]any
	ActionURL   string
	ActionLabel string
	// DedupKey identifies the underlying finding. A candidate whose key was
	// already used for the user never produces a second notification.
	DedupKey string
	Signal   Signal
}

type Signal struct {
	Similarity      int
	Confidence      int
	InsightPriority int
}

// Dispatcher turns candidates into stored, pushed notifications.
type Dispatcher interface {
	// Dispatch returns nil, nil when the user's preferences suppress the
	// candidate or an equivalent notification already exists.
	Dispatch(ctx context.Context, c Candidate) (*types.Notification, error)
}

type NotificationService interface {
	Dispatcher
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type notificationService struct {
	log    *logger.Logger
	policy NotificationPolicy
	store  NotificationStore
	prefs  PreferenceService
	emit   SSEEmitter
	now    func() time.Time
}

func NewNotificationService(
	log *logger.Logger,
	policy Policy,
	store NotificationStore,
	prefs PreferenceService,
	emit SSEEmitter,
) NotificationService {
	return &notificationService{
		log:    log.With("service", "NotificationService"),
		policy: policy.Notifications,
		store:  store,
		prefs:  prefs,
		emit:   emit,
		now:    time.Now,
	}
}

func (s *notificationService) Dispatch(ctx context.Context, c Candidate) (*types.Notification, error) {
	const op = "NotificationService.Dispatch"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	n, err := s.build(ctx, op, c)
	if errors.IsKind(err, errors.KindPreferenceSuppressed) {
		observability.Current().IncNotification(string(c.Kind), "suppressed")
		s.log.Debug("notification suppressed by preference", "user_id", c.UserID, "kind", c.Kind)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateIfAbsent(dbctx.New(ctx), n)
	if err != nil {
		return nil, errors.DataUnavailable(op, err)
	}
	if !created {
		observability.Current().IncNotification(string(c.Kind), "duplicate")
		s.log.Debug("duplicate notification skipped", "user_id", c.UserID, "dedup_key", n.DedupKey)
		return nil, nil
	}
	observability.Current().IncNotification(string(c.Kind), "created")
	emitToUser(ctx, s.emit, n.UserID, realtime.SSEEventNotificationCreated, map[string]any{"notification": n})
	return n, nil
}

func (s *notificationService) build(ctx context.Context, op string, c Candidate) (*types.Notification, error) {
	if c.UserID == uuid.Nil {
		return nil, errors.InvalidInput(op, "user id required")
	}
	if !c.Kind.Valid() {
		return nil, errors.InvalidInput(op, "unknown notification kind %q", c.Kind)
	}
	title := strings.TrimSpace(c.Title)
	if title == "" {
		return nil, errors.InvalidInput(op, "title required")
	}

	prefs, err := s.prefs.Get(ctx, c.UserID)
	if err != nil {
		return nil, err
	}
	if !prefs.Allows(c.Kind) {
		return nil, errors.Suppressed(op)
	}

	var meta datatypes.JSON
	if len(c.Metadata) > 0 {
		raw, err := json.Marshal(c.Metadata)
		if err != nil {
			return nil, errors.InvalidInput(op, "metadata: %v", err)
		}
		meta = datatypes.JSON(raw)
	}
	id := uuid.New()
	key := strings.TrimSpace(c.DedupKey)
	if key == "" {
		key = id.String()
	}
	return &types.Notification{
		ID:          id,
		UserID:      c.UserID,
		DedupKey:    key,
		Kind:        c.Kind,
		Title:       title,
		Message:     strings.TrimSpace(c.Message),
		Metadata:    meta,
		Priority:    PriorityFor(c, s.policy),
		ActionURL:   c.ActionURL,
		ActionLabel: c.ActionLabel,
		CreatedAt:   s.now().UTC(),
	}, nil
}

// PriorityFor derives a notification priority from the candidate's source
// signal.
func PriorityFor(c Candidate, p NotificationPolicy) types.NotificationPriority {
	switch c.Kind {
	case types.NotificationSimilarWork:
		if c.Signal.Similarity >= p.HighSimilarity {
			return notify.PriorityHigh
		}
		return notify.PriorityMedium
	case types.NotificationConnectionSuggestion:
		if c.Signal.Confidence >= p.HighConfidence {
			return notify.PriorityHigh
		}
		return notify.PriorityMedium
	case types.NotificationCollaborationOpportunity:
		if c.Signal.InsightPriority >= p.HighInsightPriority {
			return notify.PriorityHigh
		}
		return notify.PriorityMedium
	case types.NotificationExpertiseMatch:
		return notify.PriorityMedium
	}
	return notify.PriorityLow
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*types.Notification, int64, error) {
	const op = "NotificationService.List"
	if userID == uuid.Nil {
		return nil, 0, errors.InvalidInput(op, "user id required")
	}
	dbc := dbctx.New(ctx)
	rows, err := s.store.ListByUser(dbc, userID, unreadOnly, limit)
	if err != nil {
		return nil, 0, errors.DataUnavailable(op, err)
	}
	unread, err := s.store.CountUnread(dbc, userID)
	if err != nil {
		return nil, 0, errors.DataUnavailable(op, err)
	}
	return rows, unread, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.store.CountUnread(dbctx.New(ctx), userID)
	if err != nil {
		return 0, errors.DataUnavailable("NotificationService.UnreadCount", err)
	}
	return n, nil
}

// MarkRead is idempotent: marking an already read notification succeeds.
func (s *notificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	const op = "NotificationService.MarkRead"
	if userID == uuid.Nil || id == uuid.Nil {
		return errors.InvalidInput(op, "user id and notification id required")
	}
	changed, err := s.store.MarkRead(dbctx.New(ctx), userID, id, s.now())
	if err != nil {
		return errors.DataUnavailable(op, err)
	}
	if changed {
		emitToUser(ctx, s.emit, userID, realtime.SSEEventNotificationRead, map[string]any{"notification_ids": []uuid.UUID{id}})
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	const op = "NotificationService.MarkAllRead"
	if userID == uuid.Nil {
		return 0, errors.InvalidInput(op, "user id required")
	}
	n, err := s.store.MarkAllRead(dbctx.New(ctx), userID, s.now())
	if err != nil {
		return 0, errors.DataUnavailable(op, err)
	}
	if n > 0 {
		emitToUser(ctx, s.emit, userID, realtime.SSEEventNotificationRead, map[string]any{"all": true, "count": n})
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	const op = "NotificationService.Delete"
	if userID == uuid.Nil || id == uuid.Nil {
		return errors.InvalidInput(op, "user id and notification id required")
	}
	ok, err := s.store.Delete(dbctx.New(ctx), userID, id)
	if err != nil {
		return errors.DataUnavailable(op, err)
	}
	if !ok {
		return errors.NotFound(op, nil)
	}
	return nil
}
