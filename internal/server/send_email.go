package server

import (
	"net/http"

	"github.com/indrajit912/hermes/internal/mailer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type sendEmailRequest struct {
	BotID       string   `json:"bot_id"`
	To          []string `json:"to"`
	CC          []string `json:"cc"`
	BCC         []string `json:"bcc"`
	Subject     string   `json:"subject"`
	Body        string   `json:"body"`
	HTMLBody    string   `json:"html_body"`
	FromName    string   `json:"from_name"`
	Attachments []string `json:"attachments"`
}

// SendEmail relays a message through one of the caller's own bots, or through
// the shared default bot when no bot_id is given. Default-bot sends count
// against a per-user cap; the counter is reserved before the transport runs
// and released again if delivery fails.
func (s *Server) SendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if len(req.To) == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	user := currentUser(c)

	var creds mailer.Credentials
	botLabel := "default"
	if req.BotID != "" {
		botLabel = "own"
		smtp, err := s.bots.Credentials(ctx, user.ID, req.BotID)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		creds = mailer.Credentials{
			Email:    smtp.Email,
			Password: smtp.Password,
			Host:     smtp.Host,
			Port:     smtp.Port,
		}
	} else {
		creds = mailer.Credentials{
			Email:    s.cfg.Mail.BotEmail,
			Password: s.cfg.Mail.BotPassword,
			Host:     s.cfg.Mail.SMTPHost,
			Port:     s.cfg.Mail.SMTPPort,
		}
		ok, err := s.usersRepo.ConsumeQuota(ctx, s.db, user.ID, s.cfg.Mail.UsageLimit)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !ok {
			AbortWithError(c, ErrLimitExceeded)
			return
		}
	}

	fromName := req.FromName
	if fromName == "" {
		fromName = s.cfg.Mail.FromName
	}

	msg := mailer.Message{
		FromName:    fromName,
		To:          req.To,
		CC:          req.CC,
		BCC:         req.BCC,
		Subject:     req.Subject,
		PlainText:   req.Body,
		HTMLText:    req.HTMLBody,
		Attachments: req.Attachments,
	}

	if err := s.transport.Send(ctx, creds, msg); err != nil {
		if botLabel == "default" {
			if relErr := s.usersRepo.ReleaseQuota(ctx, s.db, user.ID); relErr != nil {
				s.log.Warn("quota release failed", zap.String("user_id", user.ID), zap.Error(relErr))
			}
		}
		s.metrics.ObserveSend("error", botLabel)
		AbortWithError(c, err)
		return
	}

	s.metrics.ObserveSend("success", botLabel)
	c.JSON(http.StatusOK, gin.H{"message": "email sent"})
}
