package mailer

import (
	"context"
	"errors"
)

// ErrSend wraps outbound transport failures so callers can map them to their
// own error taxonomy instead of leaking smtp internals.
var ErrSend = errors.New("mail_send_failed")

// Credentials are the SMTP account a message is sent through.
type Credentials struct {
	Email    string
	Password string
	Host     string
	Port     int
}

// Message is one outbound email.
type Message struct {
	FromName    string
	To          []string
	CC          []string
	BCC         []string
	Subject     string
	PlainText   string
	HTMLText    string
	Attachments []string
}

// Transport delivers a message through an arbitrary SMTP account. The relay
// endpoint uses it with per-user bot credentials.
type Transport interface {
	Send(ctx context.Context, creds Credentials, msg Message) error
}

// Notifier sends system notifications (registration, approval) rendered from
// a named template, through the default bot account.
type Notifier interface {
	SendTemplate(ctx context.Context, to []string, subject, templateName string, data map[string]any) error
}
