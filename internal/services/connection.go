package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/workpulse-backend/internal/cache"
	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/domain/analytics"
	"github.com/yungbote/workpulse-backend/internal/normalization"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/pkg/similarity"
	"github.com/yungbote/workpulse-backend/internal/realtime"
)

type ConnectionService interface {
	// Suggest ranks candidate users for userID, persists the survivors and
	// returns at most MaxResults suggestions by descending score.
	Suggest(ctx context.Context, userID uuid.UUID, now time.Time) ([]*types.ConnectionSuggestion, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.ConnectionSuggestion, error)
	Dismiss(ctx context.Context, userID, suggestionID uuid.UUID) error
	Accept(ctx context.Context, userID, suggestionID uuid.UUID) error
}

type connectionService struct {
	log         *logger.Logger
	policy      RecommenderPolicy
	patterns    WorkPatternService
	profiles    ProfileStore
	rels        RelationshipStore
	suggestions SuggestionStore
	cache       cache.Store
	emit        SSEEmitter
}

func NewConnectionService(
	log *logger.Logger,
	policy Policy,
	patterns WorkPatternService,
	profiles ProfileStore,
	rels RelationshipStore,
	suggestions SuggestionStore,
	store cache.Store,
	emit SSEEmitter,
) ConnectionService {
	return &connectionService{
		log:         log.With("service", "ConnectionService"),
		policy:      policy.Recommender,
		patterns:    patterns,
		profiles:    profiles,
		rels:        rels,
		suggestions: suggestions,
		cache:       store,
		emit:        emit,
	}
}

func (s *connectionService) Suggest(ctx context.Context, userID uuid.UUID, now time.Time) (out []*types.ConnectionSuggestion, err error) {
	const op = "ConnectionService.Suggest"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	start, hit := time.Now(), false
	defer func() { observe(op, start, hit, err) }()

	if userID == uuid.Nil {
		return nil, errors.InvalidInput(op, "user id required")
	}
	out, hit, err = cache.Remember(ctx, s.cache, cache.SuggestionsKey(userID), s.policy.CacheTTL,
		func(ctx context.Context) ([]*types.ConnectionSuggestion, error) {
			return s.compute(ctx, userID, now)
		})
	span.SetAttributes(attribute.Bool("cache_hit", hit))
	if err != nil {
		return nil, err
	}
	if hit {
		// Relationships may have changed since the list was cached.
		excluded, err := s.exclusions(dbctx.New(ctx), userID)
		if err != nil {
			return nil, errors.DataUnavailable(op, err)
		}
		kept := make([]*types.ConnectionSuggestion, 0, len(out))
		for _, sg := range out {
			if _, skip := excluded[sg.TargetUserID]; !skip {
				kept = append(kept, sg)
			}
		}
		out = kept
	}
	if out == nil {
		out = []*types.ConnectionSuggestion{}
	}
	return out, nil
}

func (s *connectionService) compute(ctx context.Context, userID uuid.UUID, now time.Time) ([]*types.ConnectionSuggestion, error) {
	const op = "ConnectionService.Suggest"
	dbc := dbctx.New(ctx)

	source, err := s.patterns.Analyze(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	excluded, err := s.exclusions(dbc, userID)
	if err != nil {
		return nil, errors.DataUnavailable(op, err)
	}
	candidates, err := s.profiles.ListActive(dbc)
	if err != nil {
		return nil, errors.DataUnavailable(op, err)
	}

	var (
		mu      sync.Mutex
		matches []*types.ConnectionSuggestion
	)
	limit := s.policy.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, cand := range candidates {
		if cand == nil || cand.ID == userID {
			continue
		}
		if _, skip := excluded[cand.ID]; skip {
			continue
		}
		cand := cand
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			pattern, err := s.patterns.Analyze(gctx, cand.ID, now)
			if err != nil {
				s.log.Warn("candidate pattern unavailable; skipping", "user_id", userID, "candidate_user_id", cand.ID, "error", err)
				return nil
			}
			m := ScoreCandidate(source, pattern, cand, s.policy)
			if m.Score < s.policy.MinScore {
				return nil
			}
			mu.Lock()
			matches = append(matches, &types.ConnectionSuggestion{
				SourceUserID:    userID,
				TargetUserID:    cand.ID,
				Score:           m.Score,
				Confidence:      similarity.Clamp(m.Score),
				Reason:          m.Reason,
				SignalKind:      m.Signal,
				SharedInterests: m.SharedInterests,
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].TargetUserID.String() < matches[j].TargetUserID.String()
	})
	if len(matches) > s.policy.MaxResults {
		matches = matches[:s.policy.MaxResults]
	}

	created := 0
	for _, m := range matches {
		ok, err := s.suggestions.CreateIfAbsent(dbc, m)
		if err != nil {
			return nil, errors.DataUnavailable(op, err)
		}
		if ok {
			created++
		}
	}
	if err := s.adoptExisting(dbc, userID, matches); err != nil {
		return nil, errors.DataUnavailable(op, err)
	}

	s.log.Debug("connection suggestions computed",
		"user_id", userID,
		"candidates", len(candidates),
		"suggested", len(matches),
		"created", created,
	)
	if created > 0 {
		emitToUser(ctx, s.emit, userID, realtime.SSEEventSuggestionsUpdated, map[string]any{"count": len(matches)})
	}
	if matches == nil {
		matches = []*types.ConnectionSuggestion{}
	}
	return matches, nil
}

// adoptExisting copies identity and state from open rows that blocked an
// insert, so callers can act on the returned suggestions by id.
func (s *connectionService) adoptExisting(dbc dbctx.Context, userID uuid.UUID, matches []*types.ConnectionSuggestion) error {
	if len(matches) == 0 {
		return nil
	}
	open, err := s.suggestions.ListOpen(dbc, userID, 0)
	if err != nil {
		return err
	}
	byTarget := make(map[uuid.UUID]*types.ConnectionSuggestion, len(open))
	for _, row := range open {
		byTarget[row.TargetUserID] = row
	}
	for _, m := range matches {
		if row, ok := byTarget[m.TargetUserID]; ok {
			m.ID = row.ID
			m.CreatedAt = row.CreatedAt
			m.UpdatedAt = row.UpdatedAt
			m.IsAccepted = row.IsAccepted
		}
	}
	return nil
}

// exclusions returns the user plus everyone holding a connected or pending
// relationship with them, in either direction.
func (s *connectionService) exclusions(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	rels, err := s.rels.ListForUser(dbc, userID, types.RelationshipConnected, types.RelationshipPending)
	if err != nil {
		return nil, err
	}
	out := map[uuid.UUID]struct{}{userID: {}}
	for _, rel := range rels {
		if rel != nil && rel.Blocks() {
			out[rel.Other(userID)] = struct{}{}
		}
	}
	return out, nil
}

// Match is the scored comparison of a source pattern against one candidate.
type Match struct {
	Score           int
	Reason          string
	Signal          types.SignalKind
	SharedTopics    []string
	SharedSkills    []string
	Complementary   []string
	SharedInterests []string
}

// ScoreCandidate applies the additive scoring rules. Each clause only
// contributes once its minimum signal is met, and each contributing clause
// adds a reason fragment.
func ScoreCandidate(source, candidate *types.WorkPattern, profile *types.UserProfile, p RecommenderPolicy) Match {
	var m Match
	if source == nil || candidate == nil {
		return m
	}
	m.SharedTopics = similarity.Intersect(source.Topics, candidate.Topics)
	m.SharedSkills = similarity.Intersect(source.Skills, candidate.Skills)
	m.Complementary = similarity.Intersect(similarity.Difference(source.Skills, candidate.Skills), candidate.Topics)

	var (
		reasons []string
		best    int
	)
	add := func(points int, kind types.SignalKind, reason string) {
		m.Score += points
		reasons = append(reasons, reason)
		if points > best {
			best = points
			m.Signal = kind
		}
	}

	if n := len(m.SharedTopics); n >= p.MinSharedTopics && n > 0 {
		add(p.TopicWeight*n, analytics.SignalTopic,
			fmt.Sprintf("%d shared topics: %s", n, strings.Join(m.SharedTopics, ", ")))
	}
	if n := len(m.SharedSkills); n >= p.MinSharedSkills && n > 0 {
		add(p.SkillWeight*n, analytics.SignalSkill,
			fmt.Sprintf("%d shared skills: %s", n, strings.Join(m.SharedSkills, ", ")))
	}
	if n := len(m.Complementary); n >= p.MinComplementary && n > 0 {
		add(p.ComplementaryWeight*n, analytics.SignalComplementary,
			fmt.Sprintf("could help with %s", strings.Join(m.Complementary, ", ")))
	}
	if profile.HasDepartment() && len(m.SharedTopics) > 0 {
		add(p.DepartmentBonus, analytics.SignalDepartment,
			fmt.Sprintf("works in %s on related topics", strings.TrimSpace(profile.Department)))
	}

	m.Reason = strings.Join(reasons, " | ")
	m.SharedInterests = normalization.Keys(append(append([]string{}, m.SharedTopics...), m.SharedSkills...))
	if m.SharedInterests == nil {
		m.SharedInterests = []string{}
	}
	return m
}

func (s *connectionService) List(ctx context.Context, userID uuid.UUID) ([]*types.ConnectionSuggestion, error) {
	const op = "ConnectionService.List"
	if userID == uuid.Nil {
		return nil, errors.InvalidInput(op, "user id required")
	}
	dbc := dbctx.New(ctx)
	rows, err := s.suggestions.ListOpen(dbc, userID, 0)
	if err != nil {
		return nil, errors.DataUnavailable(op, err)
	}
	excluded, err := s.exclusions(dbc, userID)
	if err != nil {
		return nil, errors.DataUnavailable(op, err)
	}
	out := make([]*types.ConnectionSuggestion, 0, len(rows))
	for _, row := range rows {
		if _, skip := excluded[row.TargetUserID]; skip {
			continue
		}
		out = append(out, row)
		if len(out) == s.policy.MaxResults {
			break
		}
	}
	return out, nil
}

func (s *connectionService) Dismiss(ctx context.Context, userID, suggestionID uuid.UUID) error {
	return s.mark(ctx, "ConnectionService.Dismiss", userID, suggestionID, s.suggestions.SetDismissed)
}

func (s *connectionService) Accept(ctx context.Context, userID, suggestionID uuid.UUID) error {
	return s.mark(ctx, "ConnectionService.Accept", userID, suggestionID, s.suggestions.SetAccepted)
}

func (s *connectionService) mark(
	ctx context.Context,
	op string,
	userID, suggestionID uuid.UUID,
	fn func(dbctx.Context, uuid.UUID, uuid.UUID) (bool, error),
) error {
	if userID == uuid.Nil || suggestionID == uuid.Nil {
		return errors.InvalidInput(op, "user id and suggestion id required")
	}
	ok, err := fn(dbctx.New(ctx), userID, suggestionID)
	if err != nil {
		return errors.DataUnavailable(op, err)
	}
	if !ok {
		return errors.NotFound(op, nil)
	}
	// The cached list may still hold the row.
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.SuggestionsKey(userID)); err != nil {
			s.log.Warn("suggestion cache delete failed", "user_id", userID, "error", err)
		}
	}
	emitToUser(ctx, s.emit, userID, realtime.SSEEventSuggestionsUpdated, map[string]any{"suggestion_id": suggestionID})
	return nil
}
