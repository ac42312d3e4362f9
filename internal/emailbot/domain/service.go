package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, userID string, req CreateRequest) (*Response, error)
	List(ctx context.Context, userID string) ([]Response, error)
	Update(ctx context.Context, userID, botID string, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, userID, botID string) error
	// Credentials returns the decrypted SMTP credentials of a bot the user
	// owns. Used by the send-email path.
	Credentials(ctx context.Context, userID, botID string) (*SMTPCredentials, error)
}

type CreateRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	SMTPServer string `json:"smtp_server"`
	SMTPPort   int    `json:"smtp_port"`
}

// UpdateRequest carries only the fields to change; nil means keep.
type UpdateRequest struct {
	Username   *string `json:"username"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	SMTPServer *string `json:"smtp_server"`
	SMTPPort   *int    `json:"smtp_port"`
}

type Response struct {
	BotID      string `json:"bot_id"`
	Username   string `json:"username,omitempty"`
	Email      string `json:"email"`
	SMTPServer string `json:"smtp_server"`
	SMTPPort   int    `json:"smtp_port"`
}

type SMTPCredentials struct {
	Email    string
	Password string
	Host     string
	Port     int
}

var (
	ErrNotFound        = errors.New("bot_not_found")
	ErrMissingEmail    = errors.New("missing_email")
	ErrMissingPassword = errors.New("missing_password")
)
