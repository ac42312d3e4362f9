package service

import (
	"context"
	"time"

	logdomain "github.com/indrajit912/hermes/internal/apilog/domain"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo logdomain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo logdomain.Repository
}

func New(p Params) logdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("apilog.service"),
		repo: p.Repo,
	}
}

// Record never fails the request it observes; insert errors are logged only.
func (s *Service) Record(ctx context.Context, userID, endpoint, method string, status int) {
	row := &logdomain.APILog{
		ID:         uuid.NewString(),
		UserID:     userID,
		Endpoint:   endpoint,
		Method:     method,
		StatusCode: status,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, row); err != nil {
		s.log.Warn("audit log insert failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
	}
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]logdomain.Entry, error) {
	rows, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]logdomain.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, logdomain.Entry{
			Endpoint:   row.Endpoint,
			Method:     row.Method,
			StatusCode: row.StatusCode,
			CreatedAt:  row.CreatedAt,
		})
	}
	return entries, nil
}

func (s *Service) Summarize(ctx context.Context, userID string) (*logdomain.Summary, error) {
	return s.repo.Summarize(ctx, s.db, userID)
}
