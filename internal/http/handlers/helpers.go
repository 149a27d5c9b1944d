package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/workpulse-backend/internal/http/response"
	"github.com/yungbote/workpulse-backend/internal/pkg/ctxutil"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
)

// Clock is the time source handlers pass to the engine.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// requestUser returns the caller set by middleware.RequireUser, writing a 401
// when it is missing.
func requestUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathID(c *gin.Context, op string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil || id == uuid.Nil {
		response.RespondKind(c, errors.InvalidInput(op, "invalid id %q", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, op string, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondKind(c, errors.InvalidInput(op, "invalid request body: %v", err))
		return false
	}
	return true
}
