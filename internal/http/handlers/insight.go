package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/http/response"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/services"
)

type InsightHandler struct {
	log      *logger.Logger
	insights services.InsightService
	clock    Clock
}

func NewInsightHandler(log *logger.Logger, insights services.InsightService, clock Clock) *InsightHandler {
	return &InsightHandler{
		log:      log.With("handler", "InsightHandler"),
		insights: insights,
		clock:    clock,
	}
}

// GET /api/insights?project_id=
func (h *InsightHandler) List(c *gin.Context) {
	const op = "InsightHandler.List"
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	var projectID *uuid.UUID
	if raw := strings.TrimSpace(c.Query("project_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondKind(c, errors.InvalidInput(op, "invalid project_id %q", raw))
			return
		}
		projectID = &id
	}
	out, err := h.insights.Generate(c.Request.Context(), userID, projectID, h.clock.now())
	if errors.IsKind(err, errors.KindDataUnavailable) {
		h.log.Warn("Serving stale insights", "user_id", userID, "error", err)
		response.RespondOK(c, gin.H{"insights": []*types.Insight{}, "stale": true})
		return
	}
	if err != nil {
		response.RespondKind(c, err)
		return
	}
	if out == nil {
		out = []*types.Insight{}
	}
	response.RespondOK(c, gin.H{"insights": out, "stale": false})
}
