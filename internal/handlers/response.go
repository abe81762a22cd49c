package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venturedraft/venturedraft-backend/internal/platform/apierr"
	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError maps any error to its client-facing envelope. Unexpected
// errors become a generic 500; their detail is logged, never returned.
func RespondError(c *gin.Context, log *logger.Logger, err error) {
	ae := apierr.From(err)
	msg := ae.Error()
	if ae.Status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("Request failed", "path", c.FullPath(), "error", err)
		}
		msg = "something went wrong"
	}
	c.JSON(ae.Status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    ae.Code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
