package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/workpulse-backend/internal/data/txrunner"
	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/domain/work"
	"github.com/yungbote/workpulse-backend/internal/normalization"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

type WorkItemInput struct {
	Kind     string   `json:"kind"`
	Title    string   `json:"title"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	// Dependencies are technical component keys; projects only.
	Dependencies []string `json:"dependencies,omitempty"`
}

type CreatedWorkItem struct {
	Item          *types.WorkItem          `json:"item"`
	SimilarWork   []types.SimilarWorkAlert `json:"similar_work"`
	Notifications int                      `json:"notifications"`
}

type DependencyWriter interface {
	Upsert(dbc dbctx.Context, rows []*types.WorkDependency) error
}

// DependencySync mirrors a project's dependencies into the dependency graph.
type DependencySync interface {
	SyncProject(ctx context.Context, projectID uuid.UUID, deps []*types.WorkDependency) error
}

// TxRunner scopes the item and dependency writes to one transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type WorkItemService interface {
	// Create stores a work item, runs similar-work detection for it and
	// notifies the owner about each match.
	Create(ctx context.Context, userID uuid.UUID, in WorkItemInput, now time.Time) (*CreatedWorkItem, error)
}

type workItemService struct {
	log        *logger.Logger
	tx         TxRunner
	items      WorkItemStore
	deps       DependencyWriter
	sync       DependencySync
	similar    SimilarWorkService
	dispatcher Dispatcher
}

func NewWorkItemService(
	log *logger.Logger,
	tx TxRunner,
	items WorkItemStore,
	deps DependencyWriter,
	sync DependencySync,
	similar SimilarWorkService,
	dispatcher Dispatcher,
) WorkItemService {
	if tx == nil {
		tx = txrunner.Direct{}
	}
	return &workItemService{
		log:        log.With("service", "WorkItemService"),
		tx:         tx,
		items:      items,
		deps:       deps,
		sync:       sync,
		similar:    similar,
		dispatcher: dispatcher,
	}
}

func (s *workItemService) Create(ctx context.Context, userID uuid.UUID, in WorkItemInput, now time.Time) (*CreatedWorkItem, error) {
	const op = "WorkItemService.Create"
	if userID == uuid.Nil {
		return nil, errors.InvalidInput(op, "user id required")
	}
	kind, err := work.ParseKind(in.Kind)
	if err != nil {
		return nil, errors.InvalidInput(op, "%v", err)
	}
	title := normalization.Title(in.Title)
	if title == "" {
		return nil, errors.InvalidInput(op, "title required")
	}
	if len(in.Dependencies) > 0 && kind != types.WorkKindProject {
		return nil, errors.InvalidInput(op, "dependencies are only allowed on projects")
	}

	// Detect before inserting so the new item never matches itself.
	alerts, err := s.similar.Detect(ctx, userID, kind, title, in.Tags, now)
	if err != nil {
		return nil, err
	}

	item := &types.WorkItem{
		ID:          uuid.New(),
		OwnerUserID: userID,
		Kind:        kind,
		Title:       title,
		Category:    normalization.Title(in.Category),
		Tags:        normalization.Keys(in.Tags),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	var rows []*types.WorkDependency
	if s.deps != nil {
		for _, k := range normalization.Keys(in.Dependencies) {
			rows = append(rows, &types.WorkDependency{ProjectID: item.ID, DependencyKey: k, Kind: work.DependencyTechnical})
		}
	}
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		if err := s.items.Create(dbc, item); err != nil {
			return err
		}
		if len(rows) > 0 {
			return s.deps.Upsert(dbc, rows)
		}
		return nil
	})
	if err != nil {
		return nil, errors.DataUnavailable(op, err)
	}
	if len(rows) > 0 && s.sync != nil {
		if err := s.sync.SyncProject(ctx, item.ID, rows); err != nil {
			s.log.Warn("dependency graph sync failed", "project_id", item.ID, "error", err)
		}
	}

	sent := 0
	for i := range alerts {
		a := &alerts[i]
		if s.dispatcher == nil {
			break
		}
		n, err := s.dispatcher.Dispatch(ctx, Candidate{
			UserID:  userID,
			Kind:    types.NotificationSimilarWork,
			Title:   "Similar work already exists",
			Message: a.Reason,
			Metadata: map[string]any{
				"work_item_id":       item.ID,
				"related_work_id":    a.RelatedWorkID,
				"related_user_id":    a.RelatedUserID,
				"related_work_title": a.RelatedWorkTitle,
				"similarity":         a.Similarity,
			},
			ActionURL:   fmt.Sprintf("/work-items/%s", a.RelatedWorkID),
			ActionLabel: "View related work",
			DedupKey:    fmt.Sprintf("similar_work:%s:%s", item.ID, a.RelatedWorkID),
			Signal:      Signal{Similarity: a.Similarity},
		})
		if err != nil {
			s.log.Warn("similar work notification failed", "user_id", userID, "related_work_id", a.RelatedWorkID, "error", err)
			continue
		}
		if n != nil {
			sent++
		}
	}

	return &CreatedWorkItem{Item: item, SimilarWork: alerts, Notifications: sent}, nil
}
