package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/workpulse-backend/internal/http/handlers"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/realtime"
)

func TestRouterRegistersEngineRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()
	r := NewRouter(RouterConfig{
		Log:                 log,
		HealthHandler:       httpH.NewHealthHandler(),
		ActivityHandler:     httpH.NewActivityHandler(log, nil, nil, nil),
		ConnectionHandler:   httpH.NewConnectionHandler(log, nil, nil),
		WorkItemHandler:     httpH.NewWorkItemHandler(log, nil, nil, nil),
		InsightHandler:      httpH.NewInsightHandler(log, nil, nil),
		NotificationHandler: httpH.NewNotificationHandler(log, nil, nil),
		RealtimeHandler:     httpH.NewRealtimeHandler(log, realtime.NewSSEHub(log)),
	})

	want := map[string]bool{
		"GET /healthz":                                  false,
		"POST /api/activity":                            false,
		"GET /api/work-pattern":                         false,
		"GET /api/connections/suggestions":              false,
		"POST /api/connections/suggestions/:id/dismiss": false,
		"POST /api/connections/suggestions/:id/accept":  false,
		"POST /api/work-items":                          false,
		"POST /api/work-items/similar":                  false,
		"GET /api/insights":                             false,
		"GET /api/notifications":                        false,
		"POST /api/notifications/:id/read":              false,
		"POST /api/notifications/read-all":              false,
		"DELETE /api/notifications/:id":                 false,
		"GET /api/notification-preferences":             false,
		"PATCH /api/notification-preferences":           false,
		"GET /api/realtime/stream":                      false,
	}
	for _, rt := range r.Routes() {
		key := rt.Method + " " + rt.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for route, seen := range want {
		if !seen {
			t.Fatalf("route not registered: %s", route)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: status=%d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("trace middleware not installed")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("api without identity: status=%d", rec.Code)
	}
}
