package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/workpulse-backend/internal/http/handlers"
	httpMW "github.com/yungbote/workpulse-backend/internal/http/middleware"
	"github.com/yungbote/workpulse-backend/internal/observability"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics

	HealthHandler       *httpH.HealthHandler
	ActivityHandler     *httpH.ActivityHandler
	ConnectionHandler   *httpH.ConnectionHandler
	WorkItemHandler     *httpH.WorkItemHandler
	InsightHandler      *httpH.InsightHandler
	NotificationHandler *httpH.NotificationHandler
	RealtimeHandler     *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(httpMW.RequireUser())
	{
		// Activity + work pattern
		if cfg.ActivityHandler != nil {
			api.POST("/activity", cfg.ActivityHandler.Ingest)
			api.GET("/work-pattern", cfg.ActivityHandler.WorkPattern)
		}

		// Connection suggestions
		if cfg.ConnectionHandler != nil {
			api.GET("/connections/suggestions", cfg.ConnectionHandler.Suggestions)
			api.POST("/connections/suggestions/:id/dismiss", cfg.ConnectionHandler.Dismiss)
			api.POST("/connections/suggestions/:id/accept", cfg.ConnectionHandler.Accept)
		}

		// Work items
		if cfg.WorkItemHandler != nil {
			api.POST("/work-items", cfg.WorkItemHandler.Create)
			api.POST("/work-items/similar", cfg.WorkItemHandler.Similar)
		}

		// Insights
		if cfg.InsightHandler != nil {
			api.GET("/insights", cfg.InsightHandler.List)
		}

		// Notifications
		if cfg.NotificationHandler != nil {
			api.GET("/notifications", cfg.NotificationHandler.List)
			api.POST("/notifications/read-all", cfg.NotificationHandler.MarkAllRead)
			api.POST("/notifications/:id/read", cfg.NotificationHandler.MarkRead)
			api.DELETE("/notifications/:id", cfg.NotificationHandler.Delete)
			api.GET("/notification-preferences", cfg.NotificationHandler.GetPreferences)
			api.PATCH("/notification-preferences", cfg.NotificationHandler.PatchPreferences)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			api.GET("/realtime/stream", cfg.RealtimeHandler.Stream)
		}
	}

	return r
}
