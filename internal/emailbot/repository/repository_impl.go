package repository

import (
	"context"
	"errors"

	botdomain "github.com/indrajit912/hermes/internal/emailbot/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() botdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, bot *botdomain.EmailBot) error {
	return db.WithContext(ctx).Create(bot).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, bot *botdomain.EmailBot) error {
	return db.WithContext(ctx).Save(bot).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, botID string) error {
	return db.WithContext(ctx).Delete(&botdomain.EmailBot{}, "id = ?", botID).Error
}

func (r *repo) FindOwned(ctx context.Context, db *gorm.DB, userID, botID string) (*botdomain.EmailBot, error) {
	var bot botdomain.EmailBot
	err := db.WithContext(ctx).First(&bot, "id = ? AND user_id = ?", botID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bot, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]botdomain.EmailBot, error) {
	var bots []botdomain.EmailBot
	if err := db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&bots).Error; err != nil {
		return nil, err
	}
	return bots, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]botdomain.EmailBot, error) {
	var bots []botdomain.EmailBot
	if err := db.WithContext(ctx).Find(&bots).Error; err != nil {
		return nil, err
	}
	return bots, nil
}
