package server

import (
	"errors"
	"net/http"

	botdomain "github.com/indrajit912/hermes/internal/emailbot/domain"
	"github.com/indrajit912/hermes/internal/mailer"
	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	"github.com/gin-gonic/gin"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	// ErrAuthMissing means no credential was supplied at all.
	ErrAuthMissing = errors.New("auth_missing")
	// ErrAuthInvalid means a credential was supplied but matched nobody.
	ErrAuthInvalid = errors.New("auth_invalid")
	// ErrAuthPending means the key matched a user still awaiting approval.
	ErrAuthPending = errors.New("auth_pending")
	// ErrForbidden covers blocked accounts and non-admins on admin routes.
	ErrForbidden = errors.New("forbidden")
	// ErrAdminRequired rejects non-admin callers on admin routes.
	ErrAdminRequired = errors.New("admin_required")
	// ErrLimitExceeded rejects default-bot sends past the usage cap.
	ErrLimitExceeded = errors.New("limit_exceeded")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware turns errors attached to the gin context into a
// structured JSON rejection. Store and decryption failures deliberately map
// to a generic internal error so nothing leaks to the caller.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrAuthMissing):
		return http.StatusUnauthorized, errorPayload{
			Type:    "auth_missing",
			Message: "API key missing",
		}
	case errors.Is(err, ErrAuthInvalid):
		return http.StatusForbidden, errorPayload{
			Type:    "auth_invalid",
			Message: "invalid API key",
		}
	case errors.Is(err, ErrAuthPending):
		return http.StatusForbidden, errorPayload{
			Type:    "auth_pending",
			Message: "your API key is awaiting admin approval; you will receive an email once approved",
		}
	case errors.Is(err, ErrAdminRequired):
		return http.StatusForbidden, errorPayload{
			Type:    "admin_required",
			Message: "admin access required",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusForbidden, errorPayload{
			Type:    "limit_exceeded",
			Message: "default bot usage limit exceeded",
		}
	case errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, botdomain.ErrNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, userdomain.ErrEmailTaken):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "user already exists",
		}
	case errors.Is(err, userdomain.ErrInvalidInput):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "name and email required",
		}
	case errors.Is(err, userdomain.ErrInvalidEmail):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "malformed email address",
		}
	case errors.Is(err, userdomain.ErrNoPendingKey):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "no pending API key found for this user",
		}
	case errors.Is(err, userdomain.ErrNotApproved):
		return http.StatusForbidden, errorPayload{
			Type:    "auth_pending",
			Message: "account not approved",
		}
	case errors.Is(err, botdomain.ErrMissingEmail),
		errors.Is(err, botdomain.ErrMissingPassword):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "missing email or password",
		}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "invalid request",
		}
	case errors.Is(err, mailer.ErrSend):
		return http.StatusBadGateway, errorPayload{
			Type:    "transport_error",
			Message: "failed to send email",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
