package server

import (
	"strings"

	"github.com/indrajit912/hermes/internal/identity"
	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	"github.com/gin-gonic/gin"
)

// HeaderStaticKey carries the trusted-service secret.
const HeaderStaticKey = "X-Static-Key"

const contextUserKey = "current_user"

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// RequireApprovedUser gates user-tier endpoints. The static service key is
// not accepted here: these routes represent end-user actions.
func (s *Server) RequireApprovedUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer s.audit(c)

		token := bearerToken(c)
		if token == "" {
			AbortWithError(c, ErrAuthMissing)
			return
		}

		// All users are scanned so a pending key gets a specific rejection
		// instead of a generic auth failure.
		resolved, err := s.resolver.ResolveUser(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		switch resolved.Kind {
		case identity.ApprovedUser:
			if resolved.User.IsBlocked {
				AbortWithError(c, ErrForbidden)
				return
			}
			c.Set(contextUserKey, resolved.User)
			c.Next()
		case identity.PendingUser:
			AbortWithError(c, ErrAuthPending)
		default:
			AbortWithError(c, ErrAuthInvalid)
		}
	}
}

// RequireAdmin gates administrative endpoints. The static service key is
// accepted outright; it identifies a trusted caller, not a user.
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer s.audit(c)

		if s.resolver.MatchesStaticKey(strings.TrimSpace(c.GetHeader(HeaderStaticKey))) {
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			AbortWithError(c, ErrAuthMissing)
			return
		}

		resolved, err := s.resolver.ResolveApprovedUser(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if resolved.Kind != identity.ApprovedUser || !resolved.User.IsAdmin || resolved.User.IsBlocked {
			AbortWithError(c, ErrAdminRequired)
			return
		}

		c.Set(contextUserKey, resolved.User)
		c.Next()
	}
}

// audit appends one APILog row for the gated call, attributing it to the
// resolved user when one is known.
func (s *Server) audit(c *gin.Context) {
	status := c.Writer.Status()
	if !c.Writer.Written() {
		if lastErr := c.Errors.Last(); lastErr != nil {
			status, _ = mapError(lastErr.Err)
		}
	}

	userID := ""
	if user := currentUser(c); user != nil {
		userID = user.ID
	}
	s.logs.Record(c.Request.Context(), userID, c.FullPath(), c.Request.Method, status)
}

func currentUser(c *gin.Context) *userdomain.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*userdomain.User)
	if !ok {
		return nil
	}
	return user
}
