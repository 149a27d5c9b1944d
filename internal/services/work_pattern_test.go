package services

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/realtime"
)

var errStoreDown = stderrors.New("store down")

var testNow = time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

func TestBuildWorkPatternHistograms(t *testing.T) {
	user, peer := uuid.New(), uuid.New()
	projA, projB, doc := uuid.New(), uuid.New(), uuid.New()
	p := DefaultPolicy().Pattern

	rec := func(u, subject uuid.UUID, kind types.WorkKind, ak types.ActivityKind, at time.Time) *types.ActivityRecord {
		return &types.ActivityRecord{ID: uuid.New(), UserID: u, SubjectID: subject, SubjectKind: kind, Kind: ak, OccurredAt: at}
	}
	in := PatternInput{
		Records: []*types.ActivityRecord{
			rec(user, projA, types.WorkKindProject, types.ActivityContribute, testNow.Add(-1*time.Hour)),
			rec(user, projA, types.WorkKindProject, types.ActivityContribute, testNow.Add(-25*time.Hour)),
			rec(user, projA, types.WorkKindProject, types.ActivityEdit, testNow.Add(-49*time.Hour)),
			rec(user, projB, types.WorkKindProject, types.ActivityCollaborate, testNow.Add(-3*time.Hour)),
			rec(user, doc, types.WorkKindKnowledgeItem, types.ActivityView, testNow.Add(-5*time.Hour)),
			// Foreign records are ignored.
			rec(peer, projA, types.WorkKindProject, types.ActivityEdit, testNow.Add(-2*time.Hour)),
		},
		Subjects: []*types.WorkItem{
			{ID: projA, Kind: types.WorkKindProject, Title: "Payments", Tags: []string{"Go", "Postgres"}},
			{ID: doc, Kind: types.WorkKindKnowledgeItem, Title: "Runbook", Category: "Operations"},
		},
		Profile:  &types.UserProfile{ID: user, Skills: []string{"go", "Kubernetes"}},
		CoActive: []*types.ActivityRecord{rec(peer, projA, types.WorkKindProject, types.ActivityEdit, testNow.Add(-2*time.Hour))},
	}

	got := BuildWorkPattern(user, in, testNow, p)

	if got.ActivitiesExamined != 5 {
		t.Fatalf("ActivitiesExamined: want=5 got=%d", got.ActivitiesExamined)
	}
	sum := func(xs []int) int {
		n := 0
		for _, x := range xs {
			n += x
		}
		return n
	}
	if sum(got.HourHistogram) != 5 || sum(got.DayHistogram) != 5 {
		t.Fatalf("histograms must sum to examined: hours=%d days=%d", sum(got.HourHistogram), sum(got.DayHistogram))
	}
	if len(got.HourHistogram) != 24 || len(got.DayHistogram) != 7 {
		t.Fatalf("histogram sizes: %d/%d", len(got.HourHistogram), len(got.DayHistogram))
	}
	if len(got.ActiveHours) > p.TopHours {
		t.Fatalf("ActiveHours longer than %d: %v", p.TopHours, got.ActiveHours)
	}
	if got.KnowledgeSharingScore != 2*5+1*3 {
		t.Fatalf("KnowledgeSharingScore: want=13 got=%d", got.KnowledgeSharingScore)
	}
	if len(got.ActiveProjectIDs) != 2 || got.ActiveProjectIDs[0] != projA {
		t.Fatalf("ActiveProjectIDs should rank projA first: %v", got.ActiveProjectIDs)
	}
	wantTopics := []string{"go", "kubernetes", "operations", "postgres"}
	if len(got.Topics) != len(wantTopics) {
		t.Fatalf("Topics: want=%v got=%v", wantTopics, got.Topics)
	}
	for i := range wantTopics {
		if got.Topics[i] != wantTopics[i] {
			t.Fatalf("Topics: want=%v got=%v", wantTopics, got.Topics)
		}
	}
	if len(got.CollaboratorIDs) != 1 || got.CollaboratorIDs[0] != peer {
		t.Fatalf("CollaboratorIDs: %v", got.CollaboratorIDs)
	}
	if got.Counts()["contribute"] != 2 || got.Counts()["comment"] != 0 {
		t.Fatalf("ActivityCounts: %v", got.Counts())
	}

	again := BuildWorkPattern(user, in, testNow, p)
	if again.KnowledgeSharingScore != got.KnowledgeSharingScore ||
		sum(again.HourHistogram) != sum(got.HourHistogram) ||
		again.LastAnalyzedAt != got.LastAnalyzedAt ||
		len(again.ActiveHours) != len(got.ActiveHours) {
		t.Fatalf("BuildWorkPattern is not deterministic")
	}
	for i := range got.ActiveHours {
		if again.ActiveHours[i] != got.ActiveHours[i] {
			t.Fatalf("ActiveHours differ between runs: %v vs %v", got.ActiveHours, again.ActiveHours)
		}
	}
}

func TestBuildWorkPatternEmpty(t *testing.T) {
	got := BuildWorkPattern(uuid.New(), PatternInput{}, testNow, DefaultPolicy().Pattern)
	if got.ActivitiesExamined != 0 || len(got.ActiveHours) != 0 || len(got.Topics) != 0 {
		t.Fatalf("empty input should yield an empty pattern: %+v", got)
	}
	if got.KnowledgeSharingScore != 0 {
		t.Fatalf("KnowledgeSharingScore: %d", got.KnowledgeSharingScore)
	}
}

func newPatternService(feed *fakeFeed, profiles *fakeProfiles, store *fakePatternStore, emit SSEEmitter) WorkPatternService {
	return NewWorkPatternService(logger.Nop(), DefaultPolicy(), feed, profiles, &fakeRels{}, &fakeItems{}, store, emit)
}

func TestAnalyzeReusesFreshPattern(t *testing.T) {
	user := uuid.New()
	feed := &fakeFeed{}
	feed.add(user, uuid.New(), types.WorkKindProject, types.ActivityContribute, testNow.Add(-time.Hour))
	store := newFakePatternStore()
	emit := &recordingEmitter{}
	svc := newPatternService(feed, newFakeProfiles(&types.UserProfile{ID: user, Active: true}), store, emit)
	ctx := context.Background()

	first, err := svc.Analyze(ctx, user, testNow)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if _, err := svc.Analyze(ctx, user, testNow.Add(30*time.Minute)); err != nil {
		t.Fatalf("Analyze (cached): %v", err)
	}
	if store.upserts != 1 {
		t.Fatalf("fresh pattern should not be recomputed: upserts=%d", store.upserts)
	}
	later, err := svc.Analyze(ctx, user, testNow.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("Analyze (stale): %v", err)
	}
	if store.upserts != 2 || !later.LastAnalyzedAt.After(first.LastAnalyzedAt) {
		t.Fatalf("stale pattern should be recomputed: upserts=%d", store.upserts)
	}
	if emit.count(realtime.SSEEventWorkPatternUpdated) != 2 {
		t.Fatalf("expected one event per recompute, got %d", emit.count(realtime.SSEEventWorkPatternUpdated))
	}
}

func TestAnalyzeDataUnavailableWritesNothing(t *testing.T) {
	user := uuid.New()
	store := newFakePatternStore()
	svc := newPatternService(&fakeFeed{err: errStoreDown}, newFakeProfiles(), store, nil)

	_, err := svc.Analyze(context.Background(), user, testNow)
	if !errors.IsKind(err, errors.KindDataUnavailable) {
		t.Fatalf("want DataUnavailable, got %v", err)
	}
	if store.upserts != 0 {
		t.Fatalf("no pattern may be written on failure: upserts=%d", store.upserts)
	}

	if _, err := svc.Analyze(context.Background(), uuid.Nil, testNow); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("nil user: want InvalidInput, got %v", err)
	}
}

func TestAnalyzeAllIsolatesFailures(t *testing.T) {
	good1, good2, broken, panicky := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	feed := &fakeFeed{}
	profiles := newFakeProfiles()
	for _, u := range []uuid.UUID{good1, good2, broken, panicky} {
		feed.add(u, uuid.New(), types.WorkKindProject, types.ActivityEdit, testNow.Add(-time.Hour))
		profiles.byID[u] = &types.UserProfile{ID: u, Active: true}
	}
	profiles.failFor[broken] = true
	profiles.panicFor[panicky] = true
	store := newFakePatternStore()
	svc := newPatternService(feed, profiles, store, nil)

	res, err := svc.AnalyzeAll(context.Background(), testNow)
	if err != nil {
		t.Fatalf("AnalyzeAll: %v", err)
	}
	if res.Users != 4 || res.Analyzed != 2 || res.Failed != 2 {
		t.Fatalf("unexpected sweep result: %+v", res)
	}
	if len(res.AnalyzedUsers) != 2 {
		t.Fatalf("AnalyzedUsers: %v", res.AnalyzedUsers)
	}
	if _, ok := store.byUser[good1]; !ok {
		t.Fatalf("good user should have a stored pattern")
	}
	if _, ok := store.byUser[broken]; ok {
		t.Fatalf("failed user must not have a stored pattern")
	}
}
