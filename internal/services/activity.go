package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/domain/activity"
	"github.com/yungbote/workpulse-backend/internal/domain/work"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

const (
	MaxActivityBatch = 200
	// maxClockSkew bounds how far in the future an event timestamp may be.
	maxClockSkew = 5 * time.Minute
)

// ActivityInput is one activity event as received from a producer.
type ActivityInput struct {
	ClientEventID   string          `json:"client_event_id"`
	SubjectID       string          `json:"subject_id"`
	SubjectKind     string          `json:"subject_kind"`
	Kind            string          `json:"kind"`
	OccurredAt      time.Time       `json:"occurred_at"`
	DurationSeconds *int            `json:"duration_seconds,omitempty"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
}

type ActivityService interface {
	// Ingest validates and appends events for userID. Events already seen
	// (same client_event_id) are ignored; the number of new records is
	// returned.
	Ingest(ctx context.Context, userID uuid.UUID, events []ActivityInput, now time.Time) (int, error)
}

type activityService struct {
	log *logger.Logger
	out ActivityLog
}

func NewActivityService(log *logger.Logger, out ActivityLog) ActivityService {
	return &activityService{log: log.With("service", "ActivityService"), out: out}
}

func (s *activityService) Ingest(ctx context.Context, userID uuid.UUID, events []ActivityInput, now time.Time) (int, error) {
	const op = "ActivityService.Ingest"
	if userID == uuid.Nil {
		return 0, errors.InvalidInput(op, "user id required")
	}
	if len(events) == 0 {
		return 0, nil
	}
	if len(events) > MaxActivityBatch {
		return 0, errors.InvalidInput(op, "at most %d events per batch, got %d", MaxActivityBatch, len(events))
	}

	rows := make([]*types.ActivityRecord, 0, len(events))
	for i, ev := range events {
		row, err := toRecord(userID, ev, now)
		if err != nil {
			return 0, errors.InvalidInput(op, "event %d: %v", i, err)
		}
		rows = append(rows, row)
	}

	n, err := s.out.CreateIgnoreDuplicates(dbctx.New(ctx), rows)
	if err != nil {
		return 0, errors.DataUnavailable(op, err)
	}
	s.log.Debug("activity ingested", "user_id", userID, "received", len(events), "created", n)
	return n, nil
}

func toRecord(userID uuid.UUID, ev ActivityInput, now time.Time) (*types.ActivityRecord, error) {
	kind, err := activity.ParseKind(ev.Kind)
	if err != nil {
		return nil, err
	}
	subjectKind, err := work.ParseKind(ev.SubjectKind)
	if err != nil {
		return nil, err
	}
	subjectID, err := uuid.Parse(strings.TrimSpace(ev.SubjectID))
	if err != nil || subjectID == uuid.Nil {
		return nil, errBadSubject
	}
	if ev.OccurredAt.IsZero() {
		return nil, errMissingTimestamp
	}
	if ev.OccurredAt.After(now.Add(maxClockSkew)) {
		return nil, errFutureTimestamp
	}
	if ev.DurationSeconds != nil && *ev.DurationSeconds < 0 {
		return nil, errNegativeDuration
	}
	var meta datatypes.JSON
	if len(ev.Metadata) > 0 && string(ev.Metadata) != "null" {
		if !json.Valid(ev.Metadata) {
			return nil, errBadMetadata
		}
		meta = datatypes.JSON(ev.Metadata)
	}
	clientID := strings.TrimSpace(ev.ClientEventID)
	if clientID == "" {
		clientID = uuid.NewString()
	}
	return &types.ActivityRecord{
		ID:              uuid.New(),
		UserID:          userID,
		ClientEventID:   clientID,
		SubjectID:       subjectID,
		SubjectKind:     subjectKind,
		Kind:            kind,
		OccurredAt:      ev.OccurredAt.UTC(),
		DurationSeconds: ev.DurationSeconds,
		Metadata:        meta,
		CreatedAt:       now.UTC(),
	}, nil
}
