package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	Update(ctx context.Context, db *gorm.DB, user *User) error
	Delete(ctx context.Context, db *gorm.DB, userID string) error
	FindByID(ctx context.Context, db *gorm.DB, userID string) (*User, error)
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*User, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]User, error)
	FindApproved(ctx context.Context, db *gorm.DB) ([]User, error)
	FindAdmins(ctx context.Context, db *gorm.DB) ([]User, error)
	// MarkApproved persists the pending-to-approved transition with a
	// conditional update on api_key_approved, reporting whether this call
	// won the transition. Two concurrent approvals cannot both succeed.
	MarkApproved(ctx context.Context, db *gorm.DB, user *User) (bool, error)
	// ConsumeQuota increments the default-bot usage counter only while it is
	// below limit, reporting whether the increment happened. The conditional
	// update keeps concurrent senders from overshooting the cap.
	ConsumeQuota(ctx context.Context, db *gorm.DB, userID string, limit int) (bool, error)
	ReleaseQuota(ctx context.Context, db *gorm.DB, userID string) error
}
