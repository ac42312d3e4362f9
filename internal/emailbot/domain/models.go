package domain

import (
	"time"

	"github.com/indrajit912/hermes/internal/secrets"
)

// EmailBot is a set of SMTP credentials owned by one user. Address and
// password are stored encrypted.
type EmailBot struct {
	ID                string `gorm:"primaryKey;type:text"`
	UserID            string `gorm:"column:user_id;type:text;not null;index"`
	Username          string `gorm:"type:text"`
	EmailEncrypted    string `gorm:"column:email_encrypted;type:text;not null"`
	PasswordEncrypted string `gorm:"column:password_encrypted;type:text;not null"`
	SMTPServer        string `gorm:"column:smtp_server;type:text;not null;default:smtp.gmail.com"`
	SMTPPort          int    `gorm:"column:smtp_port;not null;default:587"`
	CreatedAt         time.Time
}

// TableName sets the database table name.
func (EmailBot) TableName() string { return "email_bots" }

func (b *EmailBot) Email(c *secrets.Cipher) (string, error) {
	if b.EmailEncrypted == "" {
		return "", nil
	}
	return c.Decrypt(b.EmailEncrypted)
}

func (b *EmailBot) SetEmail(c *secrets.Cipher, value string) error {
	if value == "" {
		b.EmailEncrypted = ""
		return nil
	}
	enc, err := c.Encrypt(value)
	if err != nil {
		return err
	}
	b.EmailEncrypted = enc
	return nil
}

func (b *EmailBot) Password(c *secrets.Cipher) (string, error) {
	if b.PasswordEncrypted == "" {
		return "", nil
	}
	return c.Decrypt(b.PasswordEncrypted)
}

func (b *EmailBot) SetPassword(c *secrets.Cipher, value string) error {
	if value == "" {
		b.PasswordEncrypted = ""
		return nil
	}
	enc, err := c.Encrypt(value)
	if err != nil {
		return err
	}
	b.PasswordEncrypted = enc
	return nil
}
