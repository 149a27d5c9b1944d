package graph

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/platform/neo4jdb"
)

// Neo4jDependencyGraph stores (:Project)-[:DEPENDS_ON]->(:Dependency) and
// answers shared-dependency queries by traversal.
type Neo4jDependencyGraph struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jDependencyGraph(ctx context.Context, client *neo4jdb.Client, baseLog *logger.Logger) (*Neo4jDependencyGraph, error) {
	if client == nil || client.Driver == nil {
		return nil, fmt.Errorf("neo4j client required")
	}
	g := &Neo4jDependencyGraph{client: client, log: baseLog.With("graph", "Neo4jDependencyGraph")}
	g.initSchema(ctx)
	return g, nil
}

// initSchema is best effort; queries still work without the constraints.
func (g *Neo4jDependencyGraph) initSchema(ctx context.Context) {
	session := g.client.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	stmts := []string{
		`CREATE CONSTRAINT project_id_unique IF NOT EXISTS FOR (p:Project) REQUIRE p.id IS UNIQUE`,
		`CREATE CONSTRAINT dependency_key_unique IF NOT EXISTS FOR (d:Dependency) REQUIRE d.key IS UNIQUE`,
	}
	for _, q := range stmts {
		res, err := session.Run(ctx, q, nil)
		if err != nil {
			g.log.Warn("neo4j schema init failed (continuing)", "error", err)
			continue
		}
		_, _ = res.Consume(ctx)
	}
}

func (g *Neo4jDependencyGraph) SyncProject(ctx context.Context, projectID uuid.UUID, deps []*types.WorkDependency) error {
	if projectID == uuid.Nil || len(deps) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(deps))
	for _, d := range deps {
		if d == nil || d.DependencyKey == "" {
			continue
		}
		rows = append(rows, map[string]any{"key": d.DependencyKey, "kind": string(d.Kind)})
	}
	session := g.client.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (p:Project {id: $project_id})
SET p.synced_at = $synced_at
WITH p
UNWIND $deps AS dep
MERGE (d:Dependency {key: dep.key})
SET d.kind = dep.kind
MERGE (p)-[e:DEPENDS_ON]->(d)
SET e.synced_at = $synced_at
`, map[string]any{
			"project_id": projectID.String(),
			"deps":       rows,
			"synced_at":  time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("neo4j sync project %s: %w", projectID, err)
	}
	return nil
}

func (g *Neo4jDependencyGraph) SharedWith(ctx context.Context, projectID uuid.UUID) ([]types.SharedDependency, error) {
	if projectID == uuid.Nil {
		return []types.SharedDependency{}, nil
	}
	session := g.client.Session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (p:Project {id: $project_id})-[:DEPENDS_ON]->(d:Dependency)<-[:DEPENDS_ON]-(o:Project)
WHERE o.id <> $project_id
RETURN o.id AS project_id, collect(DISTINCT d.key) AS keys
ORDER BY project_id
`, map[string]any{"project_id": projectID.String()})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		shared := make([]types.SharedDependency, 0, len(records))
		for _, rec := range records {
			rawID, _ := rec.Get("project_id")
			idStr, _ := rawID.(string)
			id, err := uuid.Parse(idStr)
			if err != nil {
				g.log.Warn("skipping project with bad id", "project_id", idStr)
				continue
			}
			rawKeys, _ := rec.Get("keys")
			list, _ := rawKeys.([]any)
			keys := make([]string, 0, len(list))
			for _, k := range list {
				if s, ok := k.(string); ok {
					keys = append(keys, s)
				}
			}
			sort.Strings(keys)
			shared = append(shared, types.SharedDependency{ProjectID: id, Keys: keys})
		}
		return shared, nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j shared dependencies for %s: %w", projectID, err)
	}
	shared, _ := out.([]types.SharedDependency)
	return shared, nil
}
