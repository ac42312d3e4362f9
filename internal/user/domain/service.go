package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Approve(ctx context.Context, userID string) (*ApproveResult, error)
	List(ctx context.Context) ([]View, error)
	Get(ctx context.Context, userID string) (*View, error)
	Delete(ctx context.Context, userID string) error
	SetBlocked(ctx context.Context, userID string, blocked bool) error
	RotateOwnKey(ctx context.Context, userID string) (string, error)
}

type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RegisterResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	APIKeyApproved bool   `json:"api_key_approved"`
}

type ApproveResult struct {
	UserID          string `json:"user_id"`
	APIKey          string `json:"api_key,omitempty"`
	AlreadyApproved bool   `json:"already_approved,omitempty"`
	Notified        bool   `json:"notified"`
}

type View struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	IsAdmin        bool      `json:"is_admin"`
	APIKeyApproved bool      `json:"api_key_approved"`
	IsBlocked      bool      `json:"is_blocked"`
	JoinedAt       time.Time `json:"joined_at"`
}

var (
	ErrNotFound     = errors.New("user_not_found")
	ErrEmailTaken   = errors.New("email_taken")
	ErrInvalidInput = errors.New("name_and_email_required")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrNoPendingKey = errors.New("no_pending_key")
	ErrNotApproved  = errors.New("not_approved")
)
