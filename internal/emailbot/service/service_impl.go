package service

import (
	"context"
	"strings"
	"time"

	botdomain "github.com/indrajit912/hermes/internal/emailbot/domain"
	"github.com/indrajit912/hermes/internal/secrets"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultSMTPServer = "smtp.gmail.com"
	defaultSMTPPort   = 587
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   botdomain.Repository
	Cipher *secrets.Cipher
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   botdomain.Repository
	cipher *secrets.Cipher
}

func New(p Params) botdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("emailbot.service"),
		repo:   p.Repo,
		cipher: p.Cipher,
	}
}

func (s *Service) Create(ctx context.Context, userID string, req botdomain.CreateRequest) (*botdomain.Response, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, botdomain.ErrMissingEmail
	}
	if req.Password == "" {
		return nil, botdomain.ErrMissingPassword
	}

	server := strings.TrimSpace(req.SMTPServer)
	if server == "" {
		server = defaultSMTPServer
	}
	port := req.SMTPPort
	if port == 0 {
		port = defaultSMTPPort
	}

	bot := &botdomain.EmailBot{
		ID:         uuid.NewString(),
		UserID:     userID,
		Username:   strings.TrimSpace(req.Username),
		SMTPServer: server,
		SMTPPort:   port,
		CreatedAt:  time.Now().UTC(),
	}
	if err := bot.SetEmail(s.cipher, email); err != nil {
		return nil, err
	}
	if err := bot.SetPassword(s.cipher, req.Password); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, bot); err != nil {
		return nil, err
	}

	s.log.Info("email bot created", zap.String("bot_id", bot.ID), zap.String("user_id", userID))
	return s.toResponse(bot)
}

func (s *Service) List(ctx context.Context, userID string) ([]botdomain.Response, error) {
	bots, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]botdomain.Response, 0, len(bots))
	for i := range bots {
		view, err := s.toResponse(&bots[i])
		if err != nil {
			return nil, err
		}
		resp = append(resp, *view)
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, userID, botID string, req botdomain.UpdateRequest) (*botdomain.Response, error) {
	bot, err := s.repo.FindOwned(ctx, s.db, userID, botID)
	if err != nil {
		return nil, err
	}
	if bot == nil {
		return nil, botdomain.ErrNotFound
	}

	if req.Username != nil {
		bot.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email == "" {
			return nil, botdomain.ErrMissingEmail
		}
		if err := bot.SetEmail(s.cipher, email); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		if *req.Password == "" {
			return nil, botdomain.ErrMissingPassword
		}
		if err := bot.SetPassword(s.cipher, *req.Password); err != nil {
			return nil, err
		}
	}
	if req.SMTPServer != nil && strings.TrimSpace(*req.SMTPServer) != "" {
		bot.SMTPServer = strings.TrimSpace(*req.SMTPServer)
	}
	if req.SMTPPort != nil && *req.SMTPPort != 0 {
		bot.SMTPPort = *req.SMTPPort
	}

	if err := s.repo.Update(ctx, s.db, bot); err != nil {
		return nil, err
	}
	return s.toResponse(bot)
}

func (s *Service) Delete(ctx context.Context, userID, botID string) error {
	bot, err := s.repo.FindOwned(ctx, s.db, userID, botID)
	if err != nil {
		return err
	}
	if bot == nil {
		return botdomain.ErrNotFound
	}
	return s.repo.Delete(ctx, s.db, botID)
}

func (s *Service) Credentials(ctx context.Context, userID, botID string) (*botdomain.SMTPCredentials, error) {
	bot, err := s.repo.FindOwned(ctx, s.db, userID, botID)
	if err != nil {
		return nil, err
	}
	if bot == nil {
		return nil, botdomain.ErrNotFound
	}

	email, err := bot.Email(s.cipher)
	if err != nil {
		return nil, err
	}
	password, err := bot.Password(s.cipher)
	if err != nil {
		return nil, err
	}

	return &botdomain.SMTPCredentials{
		Email:    email,
		Password: password,
		Host:     bot.SMTPServer,
		Port:     bot.SMTPPort,
	}, nil
}

func (s *Service) toResponse(bot *botdomain.EmailBot) (*botdomain.Response, error) {
	email, err := bot.Email(s.cipher)
	if err != nil {
		return nil, err
	}
	return &botdomain.Response{
		BotID:      bot.ID,
		Username:   bot.Username,
		Email:      email,
		SMTPServer: bot.SMTPServer,
		SMTPPort:   bot.SMTPPort,
	}, nil
}
