package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/domain/work"
	"github.com/yungbote/workpulse-backend/internal/http/response"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/services"
)

type WorkItemHandler struct {
	log     *logger.Logger
	items   services.WorkItemService
	similar services.SimilarWorkService
	clock   Clock
}

func NewWorkItemHandler(log *logger.Logger, items services.WorkItemService, similar services.SimilarWorkService, clock Clock) *WorkItemHandler {
	return &WorkItemHandler{
		log:     log.With("handler", "WorkItemHandler"),
		items:   items,
		similar: similar,
		clock:   clock,
	}
}

// POST /api/work-items
// body: { "kind": "project", "title": "...", "tags": [...], "dependencies": [...] }
func (h *WorkItemHandler) Create(c *gin.Context) {
	const op = "WorkItemHandler.Create"
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	var req services.WorkItemInput
	if !bindJSON(c, op, &req) {
		return
	}
	out, err := h.items.Create(c.Request.Context(), userID, req, h.clock.now())
	if err != nil {
		response.RespondKind(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// POST /api/work-items/similar
// body: { "kind": "knowledge_item", "title": "...", "tags": [...] }
func (h *WorkItemHandler) Similar(c *gin.Context) {
	const op = "WorkItemHandler.Similar"
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	var req struct {
		Kind  string   `json:"kind"`
		Title string   `json:"title"`
		Tags  []string `json:"tags"`
	}
	if !bindJSON(c, op, &req) {
		return
	}
	kind, err := work.ParseKind(req.Kind)
	if err != nil {
		response.RespondKind(c, errors.InvalidInput(op, "%v", err))
		return
	}
	alerts, err := h.similar.Detect(c.Request.Context(), userID, kind, req.Title, req.Tags, h.clock.now())
	if err != nil {
		response.RespondKind(c, err)
		return
	}
	if alerts == nil {
		alerts = []types.SimilarWorkAlert{}
	}
	response.RespondOK(c, gin.H{"similar_work": alerts, "threshold": h.similar.Threshold(kind)})
}
