package server

import (
	"net/http"

	botdomain "github.com/indrajit912/hermes/internal/emailbot/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateEmailBot(c *gin.Context) {
	var req botdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.bots.Create(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bot": resp})
}

func (s *Server) ListEmailBots(c *gin.Context) {
	bots, err := s.bots.List(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bots": bots})
}

func (s *Server) UpdateEmailBot(c *gin.Context) {
	var req botdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.bots.Update(c.Request.Context(), currentUser(c).ID, c.Param("bot_id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bot": resp})
}

func (s *Server) DeleteEmailBot(c *gin.Context) {
	if err := s.bots.Delete(c.Request.Context(), currentUser(c).ID, c.Param("bot_id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email bot deleted"})
}
