package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/http/response"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/services"
)

type ConnectionHandler struct {
	log         *logger.Logger
	connections services.ConnectionService
	clock       Clock
}

func NewConnectionHandler(log *logger.Logger, connections services.ConnectionService, clock Clock) *ConnectionHandler {
	return &ConnectionHandler{
		log:         log.With("handler", "ConnectionHandler"),
		connections: connections,
		clock:       clock,
	}
}

// GET /api/connections/suggestions
// Source data outages degrade to an empty, stale list.
func (h *ConnectionHandler) Suggestions(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	out, err := h.connections.Suggest(c.Request.Context(), userID, h.clock.now())
	if errors.IsKind(err, errors.KindDataUnavailable) {
		h.log.Warn("Serving stale connection suggestions", "user_id", userID, "error", err)
		response.RespondOK(c, gin.H{"suggestions": []*types.ConnectionSuggestion{}, "stale": true})
		return
	}
	if err != nil {
		response.RespondKind(c, err)
		return
	}
	if out == nil {
		out = []*types.ConnectionSuggestion{}
	}
	response.RespondOK(c, gin.H{"suggestions": out, "stale": false})
}

// POST /api/connections/suggestions/:id/dismiss
func (h *ConnectionHandler) Dismiss(c *gin.Context) {
	h.mutate(c, "ConnectionHandler.Dismiss", h.connections.Dismiss)
}

// POST /api/connections/suggestions/:id/accept
func (h *ConnectionHandler) Accept(c *gin.Context) {
	h.mutate(c, "ConnectionHandler.Accept", h.connections.Accept)
}

func (h *ConnectionHandler) mutate(c *gin.Context, op string, fn func(ctx context.Context, userID, id uuid.UUID) error) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, op)
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), userID, id); err != nil {
		response.RespondKind(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
