package server

import (
	"net/http"

	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	"github.com/gin-gonic/gin"
)

// Register creates a pending account. The personal API key is generated here
// but withheld until an admin approves the account.
func (s *Server) Register(c *gin.Context) {
	var req userdomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.users.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "registration received; your API key will be emailed once an admin approves your account",
		"user":    resp,
	})
}
