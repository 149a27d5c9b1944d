package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/workpulse-backend/internal/domain"
)

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, name, department string, skills ...string) *types.UserProfile {
	tb.Helper()
	now := time.Now().UTC()
	p := &types.UserProfile{
		ID:          uuid.New(),
		DisplayName: name,
		Department:  department,
		Skills:      skills,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedWorkItem(tb testing.TB, ctx context.Context, tx *gorm.DB, owner uuid.UUID, kind types.WorkKind, title string, tags ...string) *types.WorkItem {
	tb.Helper()
	now := time.Now().UTC()
	w := &types.WorkItem{
		ID:          uuid.New(),
		OwnerUserID: owner,
		Kind:        kind,
		Title:       title,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tx.WithContext(ctx).Create(w).Error; err != nil {
		tb.Fatalf("seed work item: %v", err)
	}
	return w
}

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }
