// Package graph answers dependency-graph queries for the insight engine.
package graph

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/pkg/dbctx"
)

type dependencySharer interface {
	SharedWith(dbc dbctx.Context, projectID uuid.UUID) ([]types.SharedDependency, error)
}

// RelationalDependencyGraph serves shared-dependency queries from the
// work_dependency table. It is used when Neo4j is not configured.
type RelationalDependencyGraph struct {
	deps dependencySharer
}

func NewRelationalDependencyGraph(deps dependencySharer) *RelationalDependencyGraph {
	return &RelationalDependencyGraph{deps: deps}
}

func (g *RelationalDependencyGraph) SharedWith(ctx context.Context, projectID uuid.UUID) ([]types.SharedDependency, error) {
	return g.deps.SharedWith(dbctx.New(ctx), projectID)
}

// SyncProject is a no-op: the relational store is already the source.
func (g *RelationalDependencyGraph) SyncProject(ctx context.Context, projectID uuid.UUID, deps []*types.WorkDependency) error {
	return nil
}
