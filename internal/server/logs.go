package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetLogs returns the caller's API call history, newest first, with an
// aggregate summary.
func (s *Server) GetLogs(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)

	entries, err := s.logs.ListByUser(ctx, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	summary, err := s.logs.Summarize(ctx, user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":    entries,
		"summary": summary,
	})
}
