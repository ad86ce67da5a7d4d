package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/icarus/internal/common"
	"github.com/dmitrijs2005/icarus/internal/server/metrics"
	"github.com/gin-gonic/gin"
)

const userIDKey = "icarus_user_id"

// currentUser returns the authenticated user id, or "" for anonymous requests.
func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// session resolves the session cookie to a user id. Requests with a missing
// or invalid cookie continue anonymously.
func (s *HTTPServer) session() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(common.SessionCookieName); err == nil && token != "" {
			if userID, err := s.users.Authenticate(token); err == nil {
				c.Set(userIDKey, userID)
			}
		}
		c.Next()
	}
}

func requireUser(c *gin.Context) {
	if currentUser(c) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": common.ErrorUnauthorized.Error()})
		return
	}
	c.Next()
}

func (s *HTTPServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).
			Observe(elapsed.Seconds())

		s.logger.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", elapsed,
		)
	}
}
