package domain

import (
	"time"

	"github.com/indrajit912/hermes/internal/secrets"
)

// User is an API account. Key material is stored encrypted only; the plain
// key lives in APIKeyPlainEncrypted between registration and approval and is
// cleared the moment approval succeeds.
type User struct {
	ID                   string `gorm:"primaryKey;type:text"`
	Name                 string `gorm:"type:text;not null"`
	Email                string `gorm:"type:text;not null;uniqueIndex"`
	APIKeyEncrypted      string `gorm:"column:api_key_encrypted;type:text"`
	APIKeyPlainEncrypted string `gorm:"column:api_key_plain_encrypted;type:text"`
	IsAdmin              bool   `gorm:"column:is_admin;not null;default:false"`
	APIKeyApproved       bool   `gorm:"column:api_key_approved;not null;default:false"`
	IsBlocked            bool   `gorm:"column:is_blocked;not null;default:false"`
	DefaultBotUsage      int    `gorm:"column:default_bot_usage;not null;default:0"`
	CreatedAt            time.Time
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// APIKey returns the decrypted personal API key, or "" when none is stored.
func (u *User) APIKey(c *secrets.Cipher) (string, error) {
	if u.APIKeyEncrypted == "" {
		return "", nil
	}
	return c.Decrypt(u.APIKeyEncrypted)
}

// SetAPIKey encrypts and stores the personal API key. Empty clears the field.
// Rotation passes a cipher built over the new key to write under it while
// reads still happen under the old one.
func (u *User) SetAPIKey(c *secrets.Cipher, value string) error {
	if value == "" {
		u.APIKeyEncrypted = ""
		return nil
	}
	enc, err := c.Encrypt(value)
	if err != nil {
		return err
	}
	u.APIKeyEncrypted = enc
	return nil
}

// PendingAPIKey returns the decrypted not-yet-approved key, or "" when none
// is held.
func (u *User) PendingAPIKey(c *secrets.Cipher) (string, error) {
	if u.APIKeyPlainEncrypted == "" {
		return "", nil
	}
	return c.Decrypt(u.APIKeyPlainEncrypted)
}

// SetPendingAPIKey encrypts and stores the pending key. Empty clears the field.
func (u *User) SetPendingAPIKey(c *secrets.Cipher, value string) error {
	if value == "" {
		u.APIKeyPlainEncrypted = ""
		return nil
	}
	enc, err := c.Encrypt(value)
	if err != nil {
		return err
	}
	u.APIKeyPlainEncrypted = enc
	return nil
}
