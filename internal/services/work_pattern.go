package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/workpulse-backend/internal/cache"
	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/domain/activity"
	"github.com/yungbote/workpulse-backend/internal/domain/analytics"
	"github.com/yungbote/workpulse-backend/internal/normalization"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/realtime"
)

var tracer = otel.Tracer("github.com/yungbote/workpulse-backend/internal/services")

type WorkPatternService interface {
	// Analyze returns the user's work pattern, recomputing it when the stored
	// one is older than the pattern TTL.
	Analyze(ctx context.Context, userID uuid.UUID, now time.Time) (*types.WorkPattern, error)
	// AnalyzeAll analyzes every user active in the lookback window. Per-user
	// failures are logged and counted, never returned.
	AnalyzeAll(ctx context.Context, now time.Time) (SweepResult, error)
}

type SweepResult struct {
	Users    int `json:"users"`
	Analyzed int `json:"analyzed"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
	// AnalyzedUsers lists the users whose pattern is current, sorted.
	AnalyzedUsers []uuid.UUID `json:"-"`
}

type workPatternService struct {
	log      *logger.Logger
	policy   PatternPolicy
	activity ActivityFeed
	profiles ProfileStore
	rels     RelationshipStore
	items    WorkItemStore
	patterns WorkPatternStore
	emit     SSEEmitter
}

func NewWorkPatternService(
	log *logger.Logger,
	policy Policy,
	feed ActivityFeed,
	profiles ProfileStore,
	rels RelationshipStore,
	items WorkItemStore,
	patterns WorkPatternStore,
	emit SSEEmitter,
) WorkPatternService {
	return &workPatternService{
		log:      log.With("service", "WorkPatternService"),
		policy:   policy.Pattern,
		activity: feed,
		profiles: profiles,
		rels:     rels,
		items:    items,
		patterns: patterns,
		emit:     emit,
	}
}

func (s *workPatternService) Analyze(ctx context.Context, userID uuid.UUID, now time.Time) (_ *types.WorkPattern, err error) {
	const op = "WorkPatternService.Analyze"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	start, hit := time.Now(), false
	defer func() { observe(op, start, hit, err) }()
	span.SetAttributes(attribute.String("user_id", userID.String()))

	if userID == uuid.Nil {
		return nil, errors.InvalidInput(op, "user id required")
	}
	now = now.UTC()
	dbc := dbctx.New(ctx)

	existing, err := s.patterns.GetByUserID(dbc, userID)
	if err != nil {
		s.log.Warn("work pattern read failed; recomputing", "user_id", userID, "error", err)
		existing = nil
	}
	if existing != nil &&
		existing.SchemaVersion == analytics.WorkPatternSchemaVersion &&
		cache.Fresh(existing.LastAnalyzedAt, now, s.policy.TTL) {
		hit = true
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return existing, nil
	}

	in, err := s.load(dbc, userID, now)
	if err != nil {
		return nil, errors.DataUnavailable(op, err)
	}

	pattern := BuildWorkPattern(userID, in, now, s.policy)
	if err := s.patterns.Upsert(dbc, pattern); err != nil {
		return nil, errors.DataUnavailable(op, err)
	}
	s.log.Debug("work pattern analyzed",
		"user_id", userID,
		"activities", pattern.ActivitiesExamined,
		"topics", len(pattern.Topics),
	)
	emitToUser(ctx, s.emit, userID, realtime.SSEEventWorkPatternUpdated, map[string]any{"work_pattern": pattern})
	return pattern, nil
}

// PatternInput is everything BuildWorkPattern reads.
type PatternInput struct {
	Records   []*types.ActivityRecord
	Subjects  []*types.WorkItem
	Profile   *types.UserProfile
	Relations []*types.Relationship
	// CoActive holds other users' records on the same subjects.
	CoActive []*types.ActivityRecord
}

func (s *workPatternService) load(dbc dbctx.Context, userID uuid.UUID, now time.Time) (PatternInput, error) {
	var in PatternInput
	since := now.Add(-s.policy.Lookback)

	records, err := s.activity.ListByUser(dbc, userID, since, now.Add(time.Nanosecond))
	if err != nil {
		return in, err
	}
	in.Records = records

	profile, err := s.profiles.GetByID(dbc, userID)
	if err != nil {
		return in, err
	}
	in.Profile = profile

	rels, err := s.rels.ListForUser(dbc, userID, types.RelationshipConnected)
	if err != nil {
		return in, err
	}
	in.Relations = rels

	subjectIDs := subjectIDsOf(records)
	if len(subjectIDs) == 0 {
		return in, nil
	}
	items, err := s.items.GetByIDs(dbc, subjectIDs)
	if err != nil {
		return in, err
	}
	in.Subjects = items

	co, err := s.activity.ListBySubjects(dbc, subjectIDs, since, now.Add(time.Nanosecond))
	if err != nil {
		return in, err
	}
	in.CoActive = co
	return in, nil
}

// BuildWorkPattern derives a work pattern from its inputs. It is pure: the
// same input and now always produce the same pattern.
func BuildWorkPattern(userID uuid.UUID, in PatternInput, now time.Time, p PatternPolicy) *types.WorkPattern {
	hours := make([]int, 24)
	days := make([]int, 7)
	counts := make(map[string]int, len(activity.Kinds))
	for _, k := range activity.Kinds {
		counts[string(k)] = 0
	}

	projectHits := map[uuid.UUID]int{}
	examined := 0
	for _, r := range in.Records {
		if r == nil || r.UserID != userID {
			continue
		}
		examined++
		at := r.OccurredAt.UTC()
		hours[at.Hour()]++
		days[int(at.Weekday())]++
		counts[string(r.Kind)]++
		if r.SubjectKind == types.WorkKindProject {
			projectHits[r.SubjectID]++
		}
	}

	var skills []string
	if in.Profile != nil {
		skills = normalization.Keys(in.Profile.Skills)
	}
	var labels []string
	for _, item := range in.Subjects {
		labels = append(labels, item.Labels()...)
	}
	topics := normalization.Keys(append(labels, skills...))

	collaborators := map[uuid.UUID]struct{}{}
	for _, rel := range in.Relations {
		if rel == nil || rel.Status != types.RelationshipConnected {
			continue
		}
		if other := rel.Other(userID); other != uuid.Nil && other != userID {
			collaborators[other] = struct{}{}
		}
	}
	for _, r := range in.CoActive {
		if r != nil && r.UserID != userID && r.UserID != uuid.Nil {
			collaborators[r.UserID] = struct{}{}
		}
	}

	score := p.ContributeWeight*counts[string(types.ActivityContribute)] +
		p.CollaborateWeight*counts[string(types.ActivityCollaborate)]

	return &types.WorkPattern{
		ID:                    uuid.New(),
		UserID:                userID,
		Topics:                topics,
		Skills:                skills,
		ActiveProjectIDs:      rankedProjects(projectHits),
		CollaboratorIDs:       sortedIDs(collaborators),
		ActiveHours:           topBuckets(hours, p.TopHours),
		ActiveDays:            topBuckets(days, len(days)),
		HourHistogram:         hours,
		DayHistogram:          days,
		ActivityCounts:        datatypes.NewJSONType(counts),
		ActivitiesExamined:    examined,
		KnowledgeSharingScore: score,
		LastAnalyzedAt:        now.UTC().Truncate(time.Microsecond),
		SchemaVersion:         analytics.WorkPatternSchemaVersion,
		UpdatedAt:             now.UTC().Truncate(time.Microsecond),
	}
}

// topBuckets returns up to limit bucket indexes with a nonzero count, by
// count descending then index ascending.
func topBuckets(hist []int, limit int) []int {
	idx := make([]int, 0, len(hist))
	for i, c := range hist {
		if c > 0 {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if hist[idx[a]] != hist[idx[b]] {
			return hist[idx[a]] > hist[idx[b]]
		}
		return idx[a] < idx[b]
	})
	if limit > 0 && len(idx) > limit {
		idx = idx[:limit]
	}
	return idx
}

// rankedProjects orders project ids by activity count descending, then id.
func rankedProjects(hits map[uuid.UUID]int) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(hits))
	for id := range hits {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		if hits[out[i]] != hits[out[j]] {
			return hits[out[i]] > hits[out[j]]
		}
		return out[i].String() < out[j].String()
	})
	return out
}

func sortedIDs(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func subjectIDsOf(records []*types.ActivityRecord) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{}
	for _, r := range records {
		if r != nil && r.SubjectID != uuid.Nil {
			seen[r.SubjectID] = struct{}{}
		}
	}
	return sortedIDs(seen)
}

func (s *workPatternService) AnalyzeAll(ctx context.Context, now time.Time) (SweepResult, error) {
	const op = "WorkPatternService.AnalyzeAll"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	var res SweepResult
	users, err := s.activity.ActiveUserIDs(dbctx.New(ctx), now.Add(-s.policy.Lookback))
	if err != nil {
		return res, errors.DataUnavailable(op, err)
	}
	res.Users = len(users)

	limit := s.policy.SweepConcurrency
	if limit <= 0 {
		limit = 1
	}
	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for _, userID := range users {
		if ctx.Err() != nil {
			mu.Lock()
			res.Skipped++
			mu.Unlock()
			continue
		}
		userID := userID
		g.Go(func() error {
			// Each user is self-contained; a failure only affects that user.
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("work pattern panic", "user_id", userID, "panic", r)
					mu.Lock()
					res.Failed++
					mu.Unlock()
				}
			}()
			if ctx.Err() != nil {
				mu.Lock()
				res.Skipped++
				mu.Unlock()
				return nil
			}
			if _, err := s.Analyze(ctx, userID, now); err != nil {
				s.log.Warn("work pattern analysis failed; skipping user", "user_id", userID, "error", err)
				mu.Lock()
				res.Failed++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			res.Analyzed++
			res.AnalyzedUsers = append(res.AnalyzedUsers, userID)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	sort.Slice(res.AnalyzedUsers, func(i, j int) bool {
		return res.AnalyzedUsers[i].String() < res.AnalyzedUsers[j].String()
	})
	span.SetAttributes(
		attribute.Int("users", res.Users),
		attribute.Int("analyzed", res.Analyzed),
		attribute.Int("failed", res.Failed),
	)
	s.log.Info("work pattern sweep finished",
		"users", res.Users,
		"analyzed", res.Analyzed,
		"failed", res.Failed,
		"skipped", res.Skipped,
	)
	return res, ctx.Err()
}
