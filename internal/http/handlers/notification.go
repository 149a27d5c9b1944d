package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/workpulse-backend/internal/domain"
	"github.com/yungbote/workpulse-backend/internal/http/response"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
	"github.com/yungbote/workpulse-backend/internal/pkg/logger"
	"github.com/yungbote/workpulse-backend/internal/services"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type NotificationHandler struct {
	log           *logger.Logger
	notifications services.NotificationService
	prefs         services.PreferenceService
}

func NewNotificationHandler(log *logger.Logger, notifications services.NotificationService, prefs services.PreferenceService) *NotificationHandler {
	return &NotificationHandler{
		log:           log.With("handler", "NotificationHandler"),
		notifications: notifications,
		prefs:         prefs,
	}
}

// GET /api/notifications?unread_only=true&limit=50
func (h *NotificationHandler) List(c *gin.Context) {
	const op = "NotificationHandler.List"
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread_only", "false"))
	limit := defaultNotificationLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.RespondKind(c, errors.InvalidInput(op, "invalid limit %q", raw))
			return
		}
		limit = min(n, maxNotificationLimit)
	}
	rows, unread, err := h.notifications.List(c.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		response.RespondKind(c, err)
		return
	}
	if rows == nil {
		rows = []*types.Notification{}
	}
	response.RespondOK(c, gin.H{"notifications": rows, "unread_count": unread})
}

// POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "NotificationHandler.MarkRead")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), userID, id); err != nil {
		response.RespondKind(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	n, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.RespondKind(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated": n})
}

// DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "NotificationHandler.Delete")
	if !ok {
		return
	}
	if err := h.notifications.Delete(c.Request.Context(), userID, id); err != nil {
		response.RespondKind(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/notification-preferences
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	prefs, err := h.prefs.Get(c.Request.Context(), userID)
	if err != nil {
		response.RespondKind(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}

// PATCH /api/notification-preferences
// body: { "similar_work": false, "connection_suggestions": true, ... }
func (h *NotificationHandler) PatchPreferences(c *gin.Context) {
	const op = "NotificationHandler.PatchPreferences"
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	var patch types.PreferencePatch
	if !bindJSON(c, op, &patch) {
		return
	}
	if patch.Empty() {
		response.RespondKind(c, errors.InvalidInput(op, "no preference fields supplied"))
		return
	}
	prefs, err := h.prefs.Set(c.Request.Context(), userID, patch)
	if err != nil {
		response.RespondKind(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}
