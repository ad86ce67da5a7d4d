package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/icarus/internal/common"
	"github.com/gin-gonic/gin"
)

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrorInvalidRequest),
		errors.Is(err, common.ErrorUnsupportedFormat),
		errors.Is(err, common.ErrorParse):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorDuplicateUsername):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError aborts the request with the status for err. Server-side failures
// are logged and reported with a generic message.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		msg = common.ErrorInternal.Error()
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
