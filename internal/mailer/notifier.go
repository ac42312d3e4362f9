package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/indrajit912/hermes/internal/config"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateNotifier renders embedded HTML templates and sends them through
// the default bot account.
type TemplateNotifier struct {
	cfg       config.MailConfig
	transport Transport
	tmpl      *template.Template
	log       *zap.Logger
}

func NewNotifier(cfg config.MailConfig, transport Transport, log *zap.Logger) (*TemplateNotifier, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &TemplateNotifier{
		cfg:       cfg,
		transport: transport,
		tmpl:      tmpl,
		log:       log.Named("mailer.notifier"),
	}, nil
}

func (n *TemplateNotifier) SendTemplate(ctx context.Context, to []string, subject, templateName string, data map[string]any) error {
	if n.cfg.BotEmail == "" {
		n.log.Warn("default bot not configured, cannot send notification",
			zap.String("template", templateName),
		)
		return fmt.Errorf("%w: default bot not configured", ErrSend)
	}

	var body bytes.Buffer
	if err := n.tmpl.ExecuteTemplate(&body, templateName+".html", data); err != nil {
		return fmt.Errorf("%w: render %s: %v", ErrSend, templateName, err)
	}

	return n.transport.Send(ctx, Credentials{
		Email:    n.cfg.BotEmail,
		Password: n.cfg.BotPassword,
		Host:     n.cfg.SMTPHost,
		Port:     n.cfg.SMTPPort,
	}, Message{
		FromName: n.cfg.FromName,
		To:       to,
		Subject:  subject,
		HTMLText: body.String(),
	})
}

// NoOpNotifier drops notifications. Used in tests and in deployments without
// a default bot.
type NoOpNotifier struct{}

func (NoOpNotifier) SendTemplate(ctx context.Context, to []string, subject, templateName string, data map[string]any) error {
	return nil
}
