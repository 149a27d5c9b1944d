package app

import (
	"context"

	"gorm.io/gorm"

	httpH "github.com/yungbote/workpulse-backend/internal/http/handlers"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/realtime"
)

type Handlers struct {
	Health       *httpH.HealthHandler
	Activity     *httpH.ActivityHandler
	Connection   *httpH.ConnectionHandler
	WorkItem     *httpH.WorkItemHandler
	Insight      *httpH.InsightHandler
	Notification *httpH.NotificationHandler
	Realtime     *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, clients Clients, s Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	var clock httpH.Clock

	checks := []httpH.HealthCheck{{
		Name: "db",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}}
	if clients.Redis != nil {
		checks = append(checks, httpH.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return clients.Redis.Ping(ctx).Err() },
		})
	}
	if clients.Neo4j != nil {
		checks = append(checks, httpH.HealthCheck{
			Name:  "neo4j",
			Check: func(ctx context.Context) error { return clients.Neo4j.Driver.VerifyConnectivity(ctx) },
		})
	}

	return Handlers{
		Health:       httpH.NewHealthHandler(checks...),
		Activity:     httpH.NewActivityHandler(log, s.Activity, s.WorkPattern, clock),
		Connection:   httpH.NewConnectionHandler(log, s.Connection, clock),
		WorkItem:     httpH.NewWorkItemHandler(log, s.WorkItem, s.SimilarWork, clock),
		Insight:      httpH.NewInsightHandler(log, s.Insight, clock),
		Notification: httpH.NewNotificationHandler(log, s.Notification, s.Preferences),
		Realtime:     httpH.NewRealtimeHandler(log, hub),
	}
}
