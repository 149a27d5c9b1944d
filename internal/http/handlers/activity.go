package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/workpulse-backend/internal/http/response"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/services"
)

type ActivityHandler struct {
	log      *logger.Logger
	activity services.ActivityService
	patterns services.WorkPatternService
	clock    Clock
}

func NewActivityHandler(log *logger.Logger, activity services.ActivityService, patterns services.WorkPatternService, clock Clock) *ActivityHandler {
	return &ActivityHandler{
		log:      log.With("handler", "ActivityHandler"),
		activity: activity,
		patterns: patterns,
		clock:    clock,
	}
}

// POST /api/activity
// body: { "events": [ { "client_event_id": "...", "subject_id": "...", "subject_kind": "project", "kind": "edit", "occurred_at": "..." } ] }
func (h *ActivityHandler) Ingest(c *gin.Context) {
	const op = "ActivityHandler.Ingest"
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	var req struct {
		Events []services.ActivityInput `json:"events"`
	}
	if !bindJSON(c, op, &req) {
		return
	}
	n, err := h.activity.Ingest(c.Request.Context(), userID, req.Events, h.clock.now())
	if err != nil {
		response.RespondKind(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": n, "received": len(req.Events)})
}

// GET /api/work-pattern
func (h *ActivityHandler) WorkPattern(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	p, err := h.patterns.Analyze(c.Request.Context(), userID, h.clock.now())
	if err != nil {
		response.RespondKind(c, err)
		return
	}
	response.RespondOK(c, gin.H{"work_pattern": p})
}
