package repository

import (
	"context"
	"errors"

	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() userdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *userdomain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, user *userdomain.User) error {
	return db.WithContext(ctx).Save(user).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).Delete(&userdomain.User{}, "id = ?", userID).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, userID string) (*userdomain.User, error) {
	var user userdomain.User
	err := db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*userdomain.User, error) {
	var user userdomain.User
	err := db.WithContext(ctx).First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]userdomain.User, error) {
	var users []userdomain.User
	if err := db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) FindApproved(ctx context.Context, db *gorm.DB) ([]userdomain.User, error) {
	var users []userdomain.User
	if err := db.WithContext(ctx).Where("api_key_approved = ?", true).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) FindAdmins(ctx context.Context, db *gorm.DB) ([]userdomain.User, error) {
	var users []userdomain.User
	if err := db.WithContext(ctx).Where("is_admin = ?", true).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) MarkApproved(ctx context.Context, db *gorm.DB, user *userdomain.User) (bool, error) {
	res := db.WithContext(ctx).Model(&userdomain.User{}).
		Where("id = ? AND api_key_approved = ?", user.ID, false).
		Updates(map[string]any{
			"api_key_approved":        true,
			"api_key_encrypted":       user.APIKeyEncrypted,
			"api_key_plain_encrypted": user.APIKeyPlainEncrypted,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) ConsumeQuota(ctx context.Context, db *gorm.DB, userID string, limit int) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE users SET default_bot_usage = default_bot_usage + 1
		 WHERE id = ? AND default_bot_usage < ?`,
		userID,
		limit,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) ReleaseQuota(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE users SET default_bot_usage = default_bot_usage - 1
		 WHERE id = ? AND default_bot_usage > 0`,
		userID,
	).Error
}
