package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ApproveUser promotes a pending account and releases its API key. Repeating
// the call for an already-approved account is a no-op, not an error.
func (s *Server) ApproveUser(c *gin.Context) {
	result, err := s.users.Approve(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	message := "user approved; the API key has been emailed"
	switch {
	case result.AlreadyApproved:
		message = "user is already approved"
	case !result.Notified:
		message = "user approved, but the notification email could not be sent"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"result":  result,
	})
}

func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) GetUser(c *gin.Context) {
	user, err := s.users.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser removes the account along with its bots and call history.
func (s *Server) DeleteUser(c *gin.Context) {
	if err := s.users.Delete(c.Request.Context(), c.Param("user_id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (s *Server) BlockUser(c *gin.Context) {
	s.setBlocked(c, true, "user blocked")
}

func (s *Server) UnblockUser(c *gin.Context) {
	s.setBlocked(c, false, "user unblocked")
}

func (s *Server) setBlocked(c *gin.Context, blocked bool, message string) {
	if err := s.users.SetBlocked(c.Request.Context(), c.Param("user_id"), blocked); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
