package server

import (
	"net/http"

	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetProfile returns the caller's account together with their default-bot
// usage and a summary of their call history.
func (s *Server) GetProfile(c *gin.Context) {
	user := currentUser(c)

	summary, err := s.logs.Summarize(c.Request.Context(), user.ID)
	if err != nil {
		s.log.Warn("log summary unavailable", zap.String("user_id", user.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"user": userdomain.View{
			ID:             user.ID,
			Name:           user.Name,
			Email:          user.Email,
			IsAdmin:        user.IsAdmin,
			APIKeyApproved: user.APIKeyApproved,
			IsBlocked:      user.IsBlocked,
			JoinedAt:       user.CreatedAt,
		},
		"default_bot_usage": user.DefaultBotUsage,
		"default_bot_limit": s.cfg.Mail.UsageLimit,
		"activity":          summary,
	})
}

// RotateOwnKey replaces the caller's personal API key. The new key is
// returned in the response body and is never stored in plain form.
func (s *Server) RotateOwnKey(c *gin.Context) {
	user := currentUser(c)

	key, err := s.users.RotateOwnKey(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "API key rotated; the previous key no longer works",
		"api_key": key,
	})
}
