package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/workpulse-backend/internal/cache"
	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/domain/analytics"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

type insightFixture struct {
	svc        InsightService
	user       uuid.UUID
	project    uuid.UUID
	feed       *fakeFeed
	items      *fakeItems
	graph      *fakeGraph
	store      *fakeInsights
	patterns   *stubPatterns
	dispatcher *recordingDispatcher
}

func newInsightFixture(pattern *types.WorkPattern) *insightFixture {
	f := &insightFixture{
		user:       pattern.UserID,
		feed:       &fakeFeed{},
		items:      &fakeItems{},
		graph:      &fakeGraph{shared: map[uuid.UUID][]types.SharedDependency{}},
		store:      &fakeInsights{},
		patterns:   &stubPatterns{byUser: map[uuid.UUID]*types.WorkPattern{pattern.UserID: pattern}},
		dispatcher: &recordingDispatcher{},
	}
	if len(pattern.ActiveProjectIDs) > 0 {
		f.project = pattern.ActiveProjectIDs[0]
	}
	f.svc = NewInsightService(logger.Nop(), DefaultPolicy(), f.patterns, f.feed, f.items, f.graph, f.store,
		cache.NewMemoryStore(func() time.Time { return testNow }), f.dispatcher, nil)
	return f
}

func TestGenerateTimelineRisk(t *testing.T) {
	user, project := uuid.New(), uuid.New()
	f := newInsightFixture(&types.WorkPattern{UserID: user, ActiveProjectIDs: []uuid.UUID{project}})
	for i := 0; i < 15; i++ {
		f.feed.add(uuid.New(), project, types.WorkKindProject, types.ActivityEdit, testNow.Add(-time.Duration(10+i)*24*time.Hour))
	}
	f.feed.add(user, project, types.WorkKindProject, types.ActivityEdit, testNow.Add(-2*24*time.Hour))

	got, err := f.svc.Generate(context.Background(), user, nil, testNow)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 1 || got[0].Kind != analytics.InsightTimelineRisk {
		t.Fatalf("expected a single timeline-risk insight, got %+v", got)
	}
	if got[0].PriorityScore != 90 {
		t.Fatalf("PriorityScore: want=90 got=%d", got[0].PriorityScore)
	}
	if got[0].ProjectID == nil || *got[0].ProjectID != project {
		t.Fatalf("nil project should target the most active project")
	}
	if !got[0].ExpiresAt.After(testNow) {
		t.Fatalf("ExpiresAt must be in the future")
	}
	if len(f.dispatcher.candidates) != 0 {
		t.Fatalf("timeline risk does not notify")
	}

	// Served from cache without regenerating.
	f.patterns.err = errStoreDown
	again, err := f.svc.Generate(context.Background(), user, nil, testNow.Add(10*time.Minute))
	if err != nil || len(again) != 1 {
		t.Fatalf("cached Generate: len=%d err=%v", len(again), err)
	}
	if f.store.upserts != 1 {
		t.Fatalf("insights persisted %d times", f.store.upserts)
	}
}

func TestGenerateCollaborationInsights(t *testing.T) {
	user, projA, projB, other := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	pattern := &types.WorkPattern{
		UserID:           user,
		Topics:           []string{"kafka", "postgres", "streaming"},
		ActiveProjectIDs: []uuid.UUID{projA, projB},
	}
	f := newInsightFixture(pattern)

	bridge := uuid.New()
	f.feed.add(bridge, projA, types.WorkKindProject, types.ActivityEdit, testNow.Add(-24*time.Hour))
	f.feed.add(bridge, projB, types.WorkKindProject, types.ActivityEdit, testNow.Add(-24*time.Hour))

	f.items.items = append(f.items.items, &types.WorkItem{ID: other, Kind: types.WorkKindProject, Title: "Ingest", Tags: []string{"Kafka", "Streaming"}})
	outsider1, outsider2 := uuid.New(), uuid.New()
	f.feed.add(outsider1, other, types.WorkKindProject, types.ActivityContribute, testNow.Add(-3*24*time.Hour))
	f.feed.add(outsider2, other, types.WorkKindProject, types.ActivityContribute, testNow.Add(-3*24*time.Hour))

	f.graph.shared[projA] = []types.SharedDependency{{ProjectID: other, Keys: []string{"kafka"}}}

	got, err := f.svc.Generate(context.Background(), user, &projA, testNow)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	byKind := map[types.InsightKind]*types.Insight{}
	for _, in := range got {
		byKind[in.Kind] = in
	}
	if in := byKind[analytics.InsightSharedTeam]; in == nil || in.PriorityScore != 82 {
		t.Fatalf("shared team insight: %+v", in)
	}
	if in := byKind[analytics.InsightCommonDependencies]; in == nil || in.PriorityScore != 78 {
		t.Fatalf("common dependencies insight: %+v", in)
	}
	if in := byKind[analytics.InsightKnowledgeTransfer]; in == nil || in.PriorityScore != 80 {
		t.Fatalf("knowledge transfer insight: %+v", in)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].PriorityScore < got[i].PriorityScore {
			t.Fatalf("insights not sorted by priority")
		}
	}
	if len(f.dispatcher.candidates) != 2 {
		t.Fatalf("expected collaboration notifications for shared team and knowledge transfer, got %d", len(f.dispatcher.candidates))
	}
	for _, c := range f.dispatcher.candidates {
		if c.Kind != types.NotificationCollaborationOpportunity || c.DedupKey == "" {
			t.Fatalf("unexpected candidate: %+v", c)
		}
	}
}

func TestGenerateDataUnavailable(t *testing.T) {
	user, project := uuid.New(), uuid.New()
	f := newInsightFixture(&types.WorkPattern{UserID: user, ActiveProjectIDs: []uuid.UUID{project}})
	f.feed.err = errStoreDown

	if _, err := f.svc.Generate(context.Background(), user, nil, testNow); !errors.IsKind(err, errors.KindDataUnavailable) {
		t.Fatalf("want DataUnavailable, got %v", err)
	}
	if f.store.upserts != 0 || len(f.dispatcher.candidates) != 0 {
		t.Fatalf("failure must not persist or notify")
	}
}

func TestTimelineRiskRatio(t *testing.T) {
	p := DefaultPolicy().Insights
	lookback := DefaultPolicy().Pattern.Lookback
	project := uuid.New()
	mk := func(older, recent int) []*types.ActivityRecord {
		var out []*types.ActivityRecord
		for i := 0; i < older; i++ {
			out = append(out, &types.ActivityRecord{SubjectID: project, OccurredAt: testNow.Add(-20 * 24 * time.Hour)})
		}
		for i := 0; i < recent; i++ {
			out = append(out, &types.ActivityRecord{SubjectID: project, OccurredAt: testNow.Add(-24 * time.Hour)})
		}
		return out
	}
	cases := []struct {
		name          string
		older, recent int
		want          bool
	}{
		{"slowdown", 15, 1, true},
		{"steady", 23, 7, false},
		{"too little history", 10, 0, false},
		{"no recent activity", 11, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recent, older, risky := TimelineRisk(mk(tc.older, tc.recent), testNow, lookback, p)
			if recent != tc.recent || older != tc.older || risky != tc.want {
				t.Fatalf("got recent=%d older=%d risky=%v", recent, older, risky)
			}
		})
	}
}

func TestBestTransferOpportunityCapsScore(t *testing.T) {
	p := DefaultPolicy().Insights
	user, target := uuid.New(), uuid.New()
	topics := []string{"a", "b", "c", "d", "e"}
	wide := &types.WorkItem{ID: uuid.New(), Tags: topics}
	touched := &types.WorkItem{ID: uuid.New(), Tags: topics}
	teamA, teamB := uuid.New(), uuid.New()
	records := []*types.ActivityRecord{
		{UserID: teamA, SubjectID: wide.ID},
		{UserID: teamB, SubjectID: touched.ID},
		{UserID: teamB, SubjectID: target},
		{UserID: user, SubjectID: wide.ID},
	}
	best := BestTransferOpportunity(user, topics, target, []*types.WorkItem{wide, touched}, records, p)
	if best == nil || best.Project.ID != wide.ID {
		t.Fatalf("expected the untouched project, got %+v", best)
	}
	if best.Score != p.MaxOpportunity {
		t.Fatalf("Score: want=%d got=%d", p.MaxOpportunity, best.Score)
	}
	if best.TeamCount != 1 || best.Team[0] != teamA {
		t.Fatalf("the requesting user never counts toward a team: %+v", best.Team)
	}
}

func TestSharedTeamMembers(t *testing.T) {
	user, a, b := uuid.New(), uuid.New(), uuid.New()
	p1, p2 := uuid.New(), uuid.New()
	got := SharedTeamMembers(user, []*types.ActivityRecord{
		{UserID: a, SubjectID: p1},
		{UserID: a, SubjectID: p2},
		{UserID: b, SubjectID: p1},
		{UserID: b, SubjectID: p1},
		{UserID: user, SubjectID: p1},
		{UserID: user, SubjectID: p2},
	})
	if len(got) != 1 || got[0] != a {
		t.Fatalf("SharedTeamMembers: %v", got)
	}
}
