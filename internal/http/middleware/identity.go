package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/workpulse-backend/internal/http/response"
	"github.com/yungbote/workpulse-backend/internal/pkg/ctxutil"
)

const (
	headerUserID    = "X-User-ID"
	headerSessionID = "X-Session-ID"
)

// RequireUser reads the caller identity set by the upstream gateway and
// attaches it as ctxutil.RequestData. Requests without a valid user id are
// rejected. The SSE endpoint may carry the id as ?user_id= since
// EventSource cannot set headers.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(headerUserID))
		if raw == "" {
			raw = strings.TrimSpace(c.Query("user_id"))
		}
		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			c.Abort()
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errMissingUser)
			return
		}
		rd := &ctxutil.RequestData{UserID: userID}
		if sid, err := uuid.Parse(strings.TrimSpace(c.GetHeader(headerSessionID))); err == nil {
			rd.SessionID = sid
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

var errMissingUser = errors.New("missing or invalid " + headerUserID)
