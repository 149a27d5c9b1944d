package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/domain/notify"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/realtime"
)

func newNotificationFixture() (NotificationService, PreferenceService, *fakeNotifications, *recordingEmitter) {
	store := &fakeNotifications{}
	emit := &recordingEmitter{}
	prefs := NewPreferenceService(logger.Nop(), &fakePrefStore{})
	return NewNotificationService(logger.Nop(), DefaultPolicy(), store, prefs, emit), prefs, store, emit
}

func TestDispatchSuppressedByPreference(t *testing.T) {
	svc, prefs, store, emit := newNotificationFixture()
	ctx := context.Background()
	user := uuid.New()

	off := false
	if _, err := prefs.Set(ctx, user, types.PreferencePatch{SimilarWork: &off}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	n, err := svc.Dispatch(ctx, Candidate{UserID: user, Kind: types.NotificationSimilarWork, Title: "Similar work", DedupKey: "k1"})
	if err != nil || n != nil {
		t.Fatalf("suppressed dispatch: n=%v err=%v", n, err)
	}
	if len(store.rows) != 0 || emit.count(realtime.SSEEventNotificationCreated) != 0 {
		t.Fatalf("suppressed candidate must leave no record")
	}

	// Other categories are unaffected.
	n, err = svc.Dispatch(ctx, Candidate{UserID: user, Kind: types.NotificationExpertiseMatch, Title: "Expertise", DedupKey: "k2"})
	if err != nil || n == nil {
		t.Fatalf("enabled dispatch: n=%v err=%v", n, err)
	}
}

func TestDispatchDedupAndLifecycle(t *testing.T) {
	svc, _, store, emit := newNotificationFixture()
	ctx := context.Background()
	user := uuid.New()
	c := Candidate{
		UserID:   user,
		Kind:     types.NotificationSimilarWork,
		Title:    "Similar work already exists",
		Metadata: map[string]any{"similarity": 85},
		DedupKey: "similar_work:a:b",
		Signal:   Signal{Similarity: 85},
	}

	first, err := svc.Dispatch(ctx, c)
	if err != nil || first == nil {
		t.Fatalf("Dispatch: n=%v err=%v", first, err)
	}
	if first.Priority != notify.PriorityHigh {
		t.Fatalf("similarity 85 should be high priority, got %s", first.Priority)
	}
	if dup, err := svc.Dispatch(ctx, c); err != nil || dup != nil {
		t.Fatalf("duplicate dispatch: n=%v err=%v", dup, err)
	}
	if emit.count(realtime.SSEEventNotificationCreated) != 1 {
		t.Fatalf("expected one created event")
	}

	rows, unread, err := svc.List(ctx, user, false, 50)
	if err != nil || len(rows) != 1 || unread != 1 {
		t.Fatalf("List: rows=%d unread=%d err=%v", len(rows), unread, err)
	}
	if err := svc.MarkRead(ctx, user, first.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := svc.MarkRead(ctx, user, first.ID); err != nil {
		t.Fatalf("MarkRead is idempotent: %v", err)
	}
	if n, _ := svc.UnreadCount(ctx, user); n != 0 {
		t.Fatalf("UnreadCount after read: %d", n)
	}
	if err := svc.Delete(ctx, uuid.New(), first.ID); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("Delete by another user: want NotFound, got %v", err)
	}
	if err := svc.Delete(ctx, user, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// A deleted notification is never re-opened by the same finding.
	if again, err := svc.Dispatch(ctx, c); err != nil || again != nil {
		t.Fatalf("dispatch after delete: n=%v err=%v", again, err)
	}
	if len(store.rows) != 0 {
		t.Fatalf("expected no live rows, got %d", len(store.rows))
	}
}

func TestDispatchValidation(t *testing.T) {
	svc, _, _, _ := newNotificationFixture()
	ctx := context.Background()
	cases := []Candidate{
		{Kind: types.NotificationSimilarWork, Title: "x"},
		{UserID: uuid.New(), Kind: "mystery", Title: "x"},
		{UserID: uuid.New(), Kind: types.NotificationSimilarWork, Title: "  "},
	}
	for i, c := range cases {
		if _, err := svc.Dispatch(ctx, c); !errors.IsKind(err, errors.KindInvalidInput) {
			t.Fatalf("case %d: want InvalidInput, got %v", i, err)
		}
	}
}

func TestMarkAllRead(t *testing.T) {
	svc, _, _, emit := newNotificationFixture()
	ctx := context.Background()
	user := uuid.New()
	for _, key := range []string{"a", "b", "c"} {
		if _, err := svc.Dispatch(ctx, Candidate{UserID: user, Kind: types.NotificationExpertiseMatch, Title: "t", DedupKey: key}); err != nil {
			t.Fatalf("Dispatch: %v", err)
		}
	}
	n, err := svc.MarkAllRead(ctx, user)
	if err != nil || n != 3 {
		t.Fatalf("MarkAllRead: n=%d err=%v", n, err)
	}
	if n, _ := svc.MarkAllRead(ctx, user); n != 0 {
		t.Fatalf("second MarkAllRead should change nothing, got %d", n)
	}
	if emit.count(realtime.SSEEventNotificationRead) != 1 {
		t.Fatalf("expected one read event")
	}
}

func TestPriorityFor(t *testing.T) {
	p := DefaultPolicy().Notifications
	cases := []struct {
		c    Candidate
		want types.NotificationPriority
	}{
		{Candidate{Kind: types.NotificationSimilarWork, Signal: Signal{Similarity: 80}}, notify.PriorityHigh},
		{Candidate{Kind: types.NotificationSimilarWork, Signal: Signal{Similarity: 79}}, notify.PriorityMedium},
		{Candidate{Kind: types.NotificationConnectionSuggestion, Signal: Signal{Confidence: 90}}, notify.PriorityHigh},
		{Candidate{Kind: types.NotificationConnectionSuggestion, Signal: Signal{Confidence: 40}}, notify.PriorityMedium},
		{Candidate{Kind: types.NotificationCollaborationOpportunity, Signal: Signal{InsightPriority: 85}}, notify.PriorityHigh},
		{Candidate{Kind: types.NotificationCollaborationOpportunity, Signal: Signal{InsightPriority: 84}}, notify.PriorityMedium},
		{Candidate{Kind: types.NotificationExpertiseMatch}, notify.PriorityMedium},
	}
	for i, tc := range cases {
		if got := PriorityFor(tc.c, p); got != tc.want {
			t.Fatalf("case %d (%s): want=%s got=%s", i, tc.c.Kind, tc.want, got)
		}
	}
}

func TestPreferencesDefaultAndPatch(t *testing.T) {
	store := &fakePrefStore{}
	svc := NewPreferenceService(logger.Nop(), store)
	ctx := context.Background()
	user := uuid.New()

	got, err := svc.Get(ctx, user)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.SimilarWork || !got.ConnectionSuggestions || !got.CollaborationOpportunities || !got.ExpertiseMatch {
		t.Fatalf("defaults should enable everything: %+v", got)
	}
	off := false
	got, err = svc.Set(ctx, user, types.PreferencePatch{ConnectionSuggestions: &off})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got.ConnectionSuggestions || !got.SimilarWork {
		t.Fatalf("patch applied incorrectly: %+v", got)
	}
	if stored := store.byUser[user]; stored == nil || stored.ConnectionSuggestions {
		t.Fatalf("patch not persisted: %+v", stored)
	}
}
