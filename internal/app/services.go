package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/workpulse-backend/internal/data/graph"
	"github.com/yungbote/workpulse-backend/internal/data/txrunner"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/services"
)

// dependencyGraph is both the read and the sync side of the graph backend.
type dependencyGraph interface {
	services.DependencyGraph
	services.DependencySync
}

type Services struct {
	Policy       services.Policy
	Emitter      services.SSEEmitter
	Activity     services.ActivityService
	WorkPattern  services.WorkPatternService
	Connection   services.ConnectionService
	SimilarWork  services.SimilarWorkService
	WorkItem     services.WorkItemService
	Insight      services.InsightService
	Notification services.NotificationService
	Preferences  services.PreferenceService
}

func loadPolicy(log *logger.Logger, cfg Config) (services.Policy, error) {
	policy := services.DefaultPolicy()
	if cfg.PolicyFile != "" {
		p, err := services.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return services.Policy{}, fmt.Errorf("load engine policy: %w", err)
		}
		policy = p
		log.Info("Engine policy loaded", "path", cfg.PolicyFile)
	}
	if cfg.RecommenderConcurrency > 0 {
		policy.Recommender.Concurrency = cfg.RecommenderConcurrency
	}
	if cfg.Sweep.Concurrency > 0 {
		policy.Pattern.SweepConcurrency = cfg.Sweep.Concurrency
	}
	return policy, policy.Validate()
}

func wireGraph(ctx context.Context, log *logger.Logger, clients Clients, r Repos) (dependencyGraph, error) {
	if clients.Neo4j == nil {
		return graph.NewRelationalDependencyGraph(r.Dependency), nil
	}
	g, err := graph.NewNeo4jDependencyGraph(ctx, clients.Neo4j, log)
	if err != nil {
		return nil, fmt.Errorf("init neo4j dependency graph: %w", err)
	}
	return g, nil
}

func wireServices(ctx context.Context, log *logger.Logger, cfg Config, db *gorm.DB, r Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	policy, err := loadPolicy(log, cfg)
	if err != nil {
		return Services{}, err
	}
	depGraph, err := wireGraph(ctx, log, clients, r)
	if err != nil {
		return Services{}, err
	}

	// Every instance forwards bus messages into its own hub, so services
	// publish to the bus rather than the local hub.
	emit := &services.BusEmitter{Bus: clients.Bus, Log: log.With("component", "BusEmitter")}

	prefs := services.NewPreferenceService(log, r.Preferences)
	notifications := services.NewNotificationService(log, policy, r.Notification, prefs, emit)
	patterns := services.NewWorkPatternService(log, policy, r.Activity, r.Profile, r.Relationship, r.WorkItem, r.WorkPattern, emit)
	connections := services.NewConnectionService(log, policy, patterns, r.Profile, r.Relationship, r.Suggestion, clients.Cache, emit)
	similar := services.NewSimilarWorkService(log, policy, r.WorkItem)

	return Services{
		Policy:       policy,
		Emitter:      emit,
		Activity:     services.NewActivityService(log, r.Activity),
		WorkPattern:  patterns,
		Connection:   connections,
		SimilarWork:  similar,
		WorkItem:     services.NewWorkItemService(log, txrunner.NewGormTxRunner(db), r.WorkItem, r.Dependency, depGraph, similar, notifications),
		Insight:      services.NewInsightService(log, policy, patterns, r.Activity, r.WorkItem, depGraph, r.Insight, clients.Cache, notifications, emit),
		Notification: notifications,
		Preferences:  prefs,
	}, nil
}
