package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// APILog is an append-only record of one API call.
type APILog struct {
	ID         string `gorm:"primaryKey;type:text"`
	UserID     string `gorm:"column:user_id;type:text;index"`
	Endpoint   string `gorm:"type:text;not null"`
	Method     string `gorm:"type:text;not null"`
	StatusCode int    `gorm:"column:status_code;not null"`
	CreatedAt  time.Time
}

// TableName sets the database table name.
func (APILog) TableName() string { return "api_logs" }

// Summary aggregates a user's call history.
type Summary struct {
	TotalCalls     int64      `json:"total_calls"`
	SendEmailCalls int64      `json:"send_email_calls"`
	SuccessRatio   float64    `json:"success_ratio"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}

type Entry struct {
	Endpoint   string    `json:"endpoint"`
	Method     string    `json:"method"`
	StatusCode int       `json:"status_code"`
	CreatedAt  time.Time `json:"created_at"`
}

type Service interface {
	// Record appends one audit row. userID is empty for calls made with the
	// static service key.
	Record(ctx context.Context, userID, endpoint, method string, status int)
	ListByUser(ctx context.Context, userID string) ([]Entry, error)
	Summarize(ctx context.Context, userID string) (*Summary, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, log *APILog) error
	ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]APILog, error)
	Summarize(ctx context.Context, db *gorm.DB, userID string) (*Summary, error)
}
