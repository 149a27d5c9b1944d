package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/workpulse-backend/internal/cache"
	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/domain/analytics"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/pkg/similarity"
	"github.com/yungbote/workpulse-backend/internal/realtime"
)

type InsightService interface {
	// Generate returns the insights for (userID, projectID), regenerating
	// them once the cached set has expired. A nil projectID targets the
	// user's most active project.
	Generate(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID, now time.Time) ([]*types.Insight, error)
}

type insightService struct {
	log        *logger.Logger
	policy     InsightPolicy
	lookback   time.Duration
	patterns   WorkPatternService
	activity   ActivityFeed
	items      WorkItemStore
	graph      DependencyGraph
	insights   InsightStore
	cache      cache.Store
	dispatcher Dispatcher
	emit       SSEEmitter
}

func NewInsightService(
	log *logger.Logger,
	policy Policy,
	patterns WorkPatternService,
	feed ActivityFeed,
	items WorkItemStore,
	graph DependencyGraph,
	insights InsightStore,
	store cache.Store,
	dispatcher Dispatcher,
	emit SSEEmitter,
) InsightService {
	return &insightService{
		log:        log.With("service", "InsightService"),
		policy:     policy.Insights,
		lookback:   policy.Pattern.Lookback,
		patterns:   patterns,
		activity:   feed,
		items:      items,
		graph:      graph,
		insights:   insights,
		cache:      store,
		dispatcher: dispatcher,
		emit:       emit,
	}
}

// insightSet is the cached form of one (user, project) result.
type insightSet struct {
	ExpiresAt time.Time        `json:"expires_at"`
	Insights  []*types.Insight `json:"insights"`
}

func (s *insightService) Generate(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID, now time.Time) (_ []*types.Insight, err error) {
	const op = "InsightService.Generate"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	start, hit := time.Now(), false
	defer func() { observe(op, start, hit, err) }()

	if userID == uuid.Nil {
		return nil, errors.InvalidInput(op, "user id required")
	}
	now = now.UTC()
	projectKey := analytics.ProjectKeyFor(projectID)
	cacheKey := cache.InsightsKey(userID, projectKey)

	if s.cache != nil {
		var cached insightSet
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && now.Before(cached.ExpiresAt) {
			hit = true
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return nonNilInsights(cached.Insights), nil
		}
	}

	set, err := s.loadOrGenerate(ctx, op, userID, projectID, projectKey, now)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, set, set.ExpiresAt.Sub(now)); err != nil {
			s.log.Warn("insight cache write failed", "user_id", userID, "error", err)
		}
	}
	return nonNilInsights(set.Insights), nil
}

func (s *insightService) loadOrGenerate(ctx context.Context, op string, userID uuid.UUID, projectID *uuid.UUID, projectKey string, now time.Time) (insightSet, error) {
	dbc := dbctx.New(ctx)
	fresh, err := s.insights.ListFresh(dbc, userID, projectKey, now)
	if err != nil {
		return insightSet{}, errors.DataUnavailable(op, err)
	}
	if len(fresh) > 0 {
		exp := fresh[0].ExpiresAt
		for _, in := range fresh[1:] {
			if in.ExpiresAt.Before(exp) {
				exp = in.ExpiresAt
			}
		}
		return insightSet{ExpiresAt: exp, Insights: fresh}, nil
	}

	generated, err := s.generate(ctx, userID, projectID, now)
	if err != nil {
		return insightSet{}, err
	}
	expiresAt := now.Add(s.policy.TTL).Truncate(time.Microsecond)
	for _, in := range generated {
		in.ID = uuid.New()
		in.UserID = userID
		in.ProjectKey = projectKey
		in.ExpiresAt = expiresAt
		in.CreatedAt = now.Truncate(time.Microsecond)
	}
	if err := s.insights.Upsert(dbc, generated); err != nil {
		return insightSet{}, errors.DataUnavailable(op, err)
	}

	s.notifyOpportunities(ctx, userID, projectKey, generated)
	if len(generated) > 0 {
		emitToUser(ctx, s.emit, userID, realtime.SSEEventInsightsUpdated, map[string]any{"count": len(generated)})
	}
	return insightSet{ExpiresAt: expiresAt, Insights: generated}, nil
}

func (s *insightService) generate(ctx context.Context, userID uuid.UUID, projectID *uuid.UUID, now time.Time) ([]*types.Insight, error) {
	const op = "InsightService.Generate"
	pattern, err := s.patterns.Analyze(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	var target *uuid.UUID
	if projectID != nil && *projectID != uuid.Nil {
		id := *projectID
		target = &id
	} else if len(pattern.ActiveProjectIDs) > 0 {
		id := pattern.ActiveProjectIDs[0]
		target = &id
	}

	var (
		mu  sync.Mutex
		out []*types.Insight
	)
	collect := func(in *types.Insight) {
		if in == nil {
			return
		}
		in.ProjectID = target
		mu.Lock()
		out = append(out, in)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		in, err := s.sharedTeam(gctx, userID, pattern, now)
		collect(in)
		return err
	})
	if target != nil {
		g.Go(func() error {
			in, err := s.commonDependencies(gctx, *target)
			collect(in)
			return err
		})
		g.Go(func() error {
			in, err := s.knowledgeTransfer(gctx, userID, pattern, *target, now)
			collect(in)
			return err
		})
		g.Go(func() error {
			in, err := s.timelineRisk(gctx, *target, now)
			collect(in)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.DataUnavailable(op, err)
	}
	SortInsights(out)
	return out, nil
}

// SortInsights orders by priority descending, then kind and title.
func SortInsights(in []*types.Insight) {
	sort.SliceStable(in, func(i, j int) bool {
		if in[i].PriorityScore != in[j].PriorityScore {
			return in[i].PriorityScore > in[j].PriorityScore
		}
		if in[i].Kind != in[j].Kind {
			return in[i].Kind < in[j].Kind
		}
		return in[i].Title < in[j].Title
	})
}

func (s *insightService) window(now time.Time) (time.Time, time.Time) {
	return now.Add(-s.lookback), now.Add(time.Nanosecond)
}

func (s *insightService) sharedTeam(ctx context.Context, userID uuid.UUID, pattern *types.WorkPattern, now time.Time) (*types.Insight, error) {
	if len(pattern.ActiveProjectIDs) < 2 {
		return nil, nil
	}
	since, until := s.window(now)
	records, err := s.activity.ListBySubjects(dbctx.New(ctx), pattern.ActiveProjectIDs, since, until)
	if err != nil {
		return nil, err
	}
	people := SharedTeamMembers(userID, records)
	if len(people) == 0 {
		return nil, nil
	}
	n := len(people)
	title := fmt.Sprintf("%d people work across your projects", n)
	if n == 1 {
		title = "1 person works across your projects"
	}
	return &types.Insight{
		Kind:          analytics.InsightSharedTeam,
		Title:         title,
		Description:   fmt.Sprintf("They were active on at least two of your %d active projects in the last %d days.", len(pattern.ActiveProjectIDs), days(s.lookback)),
		ActionLabel:   "View people",
		ActionPayload: payload(map[string]any{"user_ids": people}),
		PriorityScore: s.policy.SharedTeamBase + s.policy.SharedTeamStep*n,
	}, nil
}

// SharedTeamMembers returns the users other than userID active on at least
// two distinct subjects in records, sorted.
func SharedTeamMembers(userID uuid.UUID, records []*types.ActivityRecord) []uuid.UUID {
	byUser := map[uuid.UUID]map[uuid.UUID]struct{}{}
	for _, r := range records {
		if r == nil || r.UserID == userID || r.UserID == uuid.Nil {
			continue
		}
		set, ok := byUser[r.UserID]
		if !ok {
			set = map[uuid.UUID]struct{}{}
			byUser[r.UserID] = set
		}
		set[r.SubjectID] = struct{}{}
	}
	out := map[uuid.UUID]struct{}{}
	for id, projects := range byUser {
		if len(projects) >= 2 {
			out[id] = struct{}{}
		}
	}
	return sortedIDs(out)
}

func (s *insightService) commonDependencies(ctx context.Context, target uuid.UUID) (*types.Insight, error) {
	if s.graph == nil {
		return nil, nil
	}
	shared, err := s.graph.SharedWith(ctx, target)
	if err != nil {
		return nil, err
	}
	if len(shared) == 0 {
		return nil, nil
	}
	projectIDs := make([]uuid.UUID, 0, len(shared))
	keySet := map[string]struct{}{}
	for _, sd := range shared {
		projectIDs = append(projectIDs, sd.ProjectID)
		for _, k := range sd.Keys {
			keySet[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	n := len(shared)
	noun := "projects share"
	if n == 1 {
		noun = "project shares"
	}
	return &types.Insight{
		Kind:          analytics.InsightCommonDependencies,
		Title:         fmt.Sprintf("%d %s dependencies with this project", n, noun),
		Description:   fmt.Sprintf("Changes to %s may affect other teams.", strings.Join(keys, ", ")),
		ActionLabel:   "Review dependencies",
		ActionPayload: payload(map[string]any{"project_ids": projectIDs, "dependency_keys": keys}),
		PriorityScore: s.policy.DependencyBase + s.policy.DependencyStep*n,
	}, nil
}

// TransferOpportunity is a project whose team could bring knowledge to the
// target project.
type TransferOpportunity struct {
	Project   *types.WorkItem
	Overlap   []string
	Team      []uuid.UUID
	Score     int
	TeamCount int
}

func (s *insightService) knowledgeTransfer(ctx context.Context, userID uuid.UUID, pattern *types.WorkPattern, target uuid.UUID, now time.Time) (*types.Insight, error) {
	if len(pattern.Topics) == 0 {
		return nil, nil
	}
	dbc := dbctx.New(ctx)
	projects, err := s.items.ListByKind(dbc, types.WorkKindProject)
	if err != nil {
		return nil, err
	}
	own := map[uuid.UUID]struct{}{target: {}}
	for _, id := range pattern.ActiveProjectIDs {
		own[id] = struct{}{}
	}
	var candidates []*types.WorkItem
	ids := []uuid.UUID{target}
	for _, p := range projects {
		if p == nil {
			continue
		}
		if _, skip := own[p.ID]; skip {
			continue
		}
		if len(similarity.Intersect(pattern.Topics, p.Labels())) == 0 {
			continue
		}
		candidates = append(candidates, p)
		ids = append(ids, p.ID)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	since, until := s.window(now)
	records, err := s.activity.ListBySubjects(dbc, ids, since, until)
	if err != nil {
		return nil, err
	}
	best := BestTransferOpportunity(userID, pattern.Topics, target, candidates, records, s.policy)
	if best == nil {
		return nil, nil
	}
	return &types.Insight{
		Kind:  analytics.InsightKnowledgeTransfer,
		Title: fmt.Sprintf("The %s team works on related topics", best.Project.Title),
		Description: fmt.Sprintf("%d people on %q work on %s and have not been involved in this project yet.",
			best.TeamCount, best.Project.Title, strings.Join(best.Overlap, ", ")),
		ActionLabel:   "Start a knowledge exchange",
		ActionPayload: payload(map[string]any{"project_id": best.Project.ID, "user_ids": best.Team, "topics": best.Overlap}),
		PriorityScore: s.policy.KnowledgeTransferBase + best.Score,
	}, nil
}

// BestTransferOpportunity picks the candidate project with the largest topic
// overlap whose active team has no activity on target. Users active on
// target, and userID, never count toward a team.
func BestTransferOpportunity(
	userID uuid.UUID,
	topics []string,
	target uuid.UUID,
	candidates []*types.WorkItem,
	records []*types.ActivityRecord,
	p InsightPolicy,
) *TransferOpportunity {
	engaged := map[uuid.UUID]struct{}{}
	teams := map[uuid.UUID]map[uuid.UUID]struct{}{}
	for _, r := range records {
		if r == nil {
			continue
		}
		if r.SubjectID == target {
			engaged[r.UserID] = struct{}{}
			continue
		}
		if r.UserID == userID {
			continue
		}
		set, ok := teams[r.SubjectID]
		if !ok {
			set = map[uuid.UUID]struct{}{}
			teams[r.SubjectID] = set
		}
		set[r.UserID] = struct{}{}
	}

	var best *TransferOpportunity
	for _, c := range candidates {
		team := teams[c.ID]
		if len(team) == 0 {
			continue
		}
		touched := false
		for id := range team {
			if _, ok := engaged[id]; ok {
				touched = true
				break
			}
		}
		if touched {
			continue
		}
		overlap := similarity.Intersect(topics, c.Labels())
		if len(overlap) == 0 {
			continue
		}
		score := p.OpportunityPerTopic * len(overlap)
		if p.MaxOpportunity > 0 && score > p.MaxOpportunity {
			score = p.MaxOpportunity
		}
		opp := &TransferOpportunity{Project: c, Overlap: overlap, Team: sortedIDs(team), Score: score, TeamCount: len(team)}
		if best == nil ||
			opp.Score > best.Score ||
			(opp.Score == best.Score && opp.TeamCount > best.TeamCount) ||
			(opp.Score == best.Score && opp.TeamCount == best.TeamCount && c.ID.String() < best.Project.ID.String()) {
			best = opp
		}
	}
	return best
}

func (s *insightService) timelineRisk(ctx context.Context, target uuid.UUID, now time.Time) (*types.Insight, error) {
	since, until := s.window(now)
	records, err := s.activity.ListBySubjects(dbctx.New(ctx), []uuid.UUID{target}, since, until)
	if err != nil {
		return nil, err
	}
	recent, older, risky := TimelineRisk(records, now, s.lookback, s.policy)
	if !risky {
		return nil, nil
	}
	recentDays := days(s.policy.RecentWindow)
	return &types.Insight{
		Kind:  analytics.InsightTimelineRisk,
		Title: "Activity on this project is slowing down",
		Description: fmt.Sprintf("%d events in the last %d days compared with %d in the %d days before.",
			recent, recentDays, older, days(s.lookback)-recentDays),
		ActionLabel:   "Check in with the team",
		ActionPayload: payload(map[string]any{"project_id": target, "recent_events": recent, "older_events": older}),
		PriorityScore: s.policy.TimelineRiskPriority,
	}, nil
}

// TimelineRisk compares the daily event rate of the recent window with the
// rest of the lookback window. It is a ratio heuristic, not a trend test:
// risk requires more than MinOlderEvents older events and a recent rate
// below SlowdownRatio times the older rate.
func TimelineRisk(records []*types.ActivityRecord, now time.Time, lookback time.Duration, p InsightPolicy) (recent, older int, risky bool) {
	start := now.Add(-lookback)
	split := now.Add(-p.RecentWindow)
	for _, r := range records {
		if r == nil {
			continue
		}
		at := r.OccurredAt
		switch {
		case at.Before(start) || at.After(now):
		case at.Before(split):
			older++
		default:
			recent++
		}
	}
	if older <= p.MinOlderEvents {
		return recent, older, false
	}
	recentSpan := p.RecentWindow.Hours()
	olderSpan := (lookback - p.RecentWindow).Hours()
	if recentSpan <= 0 || olderSpan <= 0 {
		return recent, older, false
	}
	recentRate := float64(recent) / recentSpan
	olderRate := float64(older) / olderSpan
	return recent, older, recentRate < p.SlowdownRatio*olderRate
}

func (s *insightService) notifyOpportunities(ctx context.Context, userID uuid.UUID, projectKey string, insights []*types.Insight) {
	if s.dispatcher == nil {
		return
	}
	for _, in := range insights {
		if in.Kind != analytics.InsightSharedTeam && in.Kind != analytics.InsightKnowledgeTransfer {
			continue
		}
		_, err := s.dispatcher.Dispatch(ctx, Candidate{
			UserID:      userID,
			Kind:        types.NotificationCollaborationOpportunity,
			Title:       in.Title,
			Message:     in.Description,
			Metadata:    map[string]any{"insight_kind": in.Kind, "project_id": in.ProjectID},
			ActionLabel: in.ActionLabel,
			ActionURL:   "/insights",
			DedupKey:    fmt.Sprintf("insight:%s:%s:%s", in.Kind, projectKey, in.Title),
			Signal:      Signal{InsightPriority: in.PriorityScore},
		})
		if err != nil {
			s.log.Warn("collaboration notification failed", "user_id", userID, "kind", in.Kind, "error", err)
		}
	}
}

func payload(v map[string]any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func days(d time.Duration) int { return int(d.Hours() / 24) }

func nonNilInsights(in []*types.Insight) []*types.Insight {
	if in == nil {
		return []*types.Insight{}
	}
	return in
}
