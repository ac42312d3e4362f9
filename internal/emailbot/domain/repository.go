package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, bot *EmailBot) error
	Update(ctx context.Context, db *gorm.DB, bot *EmailBot) error
	Delete(ctx context.Context, db *gorm.DB, botID string) error
	// FindOwned resolves a bot only when it belongs to the given user.
	FindOwned(ctx context.Context, db *gorm.DB, userID, botID string) (*EmailBot, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]EmailBot, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]EmailBot, error)
}
