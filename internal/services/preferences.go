package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/domain/notify"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

type PreferenceService interface {
	// Get returns the stored preferences, or all-enabled defaults.
	Get(ctx context.Context, userID uuid.UUID) (*types.NotificationPreferences, error)
	// Set applies a partial update and returns the result.
	Set(ctx context.Context, userID uuid.UUID, patch types.PreferencePatch) (*types.NotificationPreferences, error)
}

type preferenceService struct {
	log   *logger.Logger
	store PreferenceStore
}

func NewPreferenceService(log *logger.Logger, store PreferenceStore) PreferenceService {
	return &preferenceService{log: log.With("service", "PreferenceService"), store: store}
}

func (s *preferenceService) Get(ctx context.Context, userID uuid.UUID) (*types.NotificationPreferences, error) {
	const op = "PreferenceService.Get"
	if userID == uuid.Nil {
		return nil, errors.InvalidInput(op, "user id required")
	}
	row, err := s.store.GetByUserID(dbctx.New(ctx), userID)
	if err != nil {
		return nil, errors.DataUnavailable(op, err)
	}
	if row == nil {
		return notify.DefaultPreferences(userID), nil
	}
	return row, nil
}

func (s *preferenceService) Set(ctx context.Context, userID uuid.UUID, patch types.PreferencePatch) (*types.NotificationPreferences, error) {
	const op = "PreferenceService.Set"
	cur, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return cur, nil
	}
	next := patch.Apply(cur)
	// The row is keyed by user_id; the surrogate id is assigned on insert.
	next.ID = uuid.Nil
	if err := s.store.Upsert(dbctx.New(ctx), next); err != nil {
		return nil, errors.DataUnavailable(op, err)
	}
	s.log.Info("notification preferences updated", "user_id", userID)
	return next, nil
}
