package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/normalization"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/pkg/similarity"
)

type SimilarWorkService interface {
	// Detect compares a new work item against existing items of the same kind
	// owned by other users and returns the strongest matches.
	Detect(ctx context.Context, userID uuid.UUID, kind types.WorkKind, title string, tags []string, now time.Time) ([]types.SimilarWorkAlert, error)
	// Threshold is the minimum similarity reported for kind.
	Threshold(kind types.WorkKind) int
}

type similarWorkService struct {
	log    *logger.Logger
	policy SimilarWorkPolicy
	items  WorkItemStore
}

func NewSimilarWorkService(log *logger.Logger, policy Policy, items WorkItemStore) SimilarWorkService {
	return &similarWorkService{
		log:    log.With("service", "SimilarWorkService"),
		policy: policy.SimilarWork,
		items:  items,
	}
}

func (s *similarWorkService) Threshold(kind types.WorkKind) int {
	if kind == types.WorkKindKnowledgeItem {
		return s.policy.KnowledgeItemThreshold
	}
	return s.policy.ProjectThreshold
}

func (s *similarWorkService) Detect(ctx context.Context, userID uuid.UUID, kind types.WorkKind, title string, tags []string, now time.Time) (_ []types.SimilarWorkAlert, err error) {
	const op = "SimilarWorkService.Detect"
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	start := time.Now()
	defer func() { observe(op, start, false, err) }()

	if userID == uuid.Nil {
		return nil, errors.InvalidInput(op, "user id required")
	}
	if !kind.Valid() {
		return nil, errors.InvalidInput(op, "unknown work kind %q", kind)
	}
	title = normalization.Title(title)
	if title == "" {
		return nil, errors.InvalidInput(op, "title required")
	}

	candidates, err := s.items.ListByKindExcludingOwner(dbctx.New(ctx), kind, userID, s.policy.CandidateLimit)
	if err != nil {
		return nil, errors.DataUnavailable(op, err)
	}

	threshold := s.Threshold(kind)
	alerts := make([]types.SimilarWorkAlert, 0)
	for _, c := range candidates {
		if c == nil || c.OwnerUserID == userID {
			continue
		}
		textScore := similarity.Text(title, c.Title)
		tagScore := similarity.Tags(tags, c.Tags)
		score := textScore
		if tagScore > score {
			score = tagScore
		}
		if score < threshold {
			continue
		}
		alerts = append(alerts, types.SimilarWorkAlert{
			SubjectUserID:    userID,
			RelatedUserID:    c.OwnerUserID,
			WorkKind:         kind,
			RelatedWorkID:    c.ID,
			RelatedWorkTitle: c.Title,
			Similarity:       similarity.Clamp(score),
			Reason:           similarReason(c, textScore, tagScore, tags),
			CreatedAt:        now.UTC(),
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Similarity != alerts[j].Similarity {
			return alerts[i].Similarity > alerts[j].Similarity
		}
		return alerts[i].RelatedWorkID.String() < alerts[j].RelatedWorkID.String()
	})
	if len(alerts) > s.policy.MaxResults {
		alerts = alerts[:s.policy.MaxResults]
	}
	span.SetAttributes(
		attribute.String("work_kind", string(kind)),
		attribute.Int("candidates", len(candidates)),
		attribute.Int("alerts", len(alerts)),
	)
	return alerts, nil
}

func similarReason(c *types.WorkItem, textScore, tagScore int, tags []string) string {
	if tagScore > textScore {
		shared := similarity.Intersect(tags, c.Tags)
		return fmt.Sprintf("Tags overlap %d%% with %q (%s)", tagScore, c.Title, strings.Join(shared, ", "))
	}
	return fmt.Sprintf("Title is %d%% similar to %q", textScore, c.Title)
}
