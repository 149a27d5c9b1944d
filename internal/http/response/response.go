package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondKind maps the error's kind onto an HTTP status and writes the
// envelope. Errors without a kind are internal.
func RespondKind(c *gin.Context, err error) {
	kind := errors.KindOf(err)
	RespondError(c, StatusFor(kind), codeFor(kind), err)
}

func StatusFor(kind errors.Kind) int {
	switch kind {
	case errors.KindInvalidInput:
		return http.StatusBadRequest
	case errors.KindNotFound:
		return http.StatusNotFound
	case errors.KindDataUnavailable:
		return http.StatusServiceUnavailable
	case errors.KindPreferenceSuppressed:
		return http.StatusNoContent
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(kind errors.Kind) string {
	if kind == "" {
		return "internal"
	}
	return string(kind)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
