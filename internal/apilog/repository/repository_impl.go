package repository

import (
	"context"

	logdomain "github.com/indrajit912/hermes/internal/apilog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() logdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, log *logdomain.APILog) error {
	return db.WithContext(ctx).Create(log).Error
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]logdomain.APILog, error) {
	var logs []logdomain.APILog
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *repo) Summarize(ctx context.Context, db *gorm.DB, userID string) (*logdomain.Summary, error) {
	var row struct {
		Total     int64
		SendCalls int64
		Succeeded int64
	}
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS total,
		        SUM(CASE WHEN endpoint LIKE '%send-email%' THEN 1 ELSE 0 END) AS send_calls,
		        SUM(CASE WHEN status_code < 400 THEN 1 ELSE 0 END) AS succeeded
		 FROM api_logs WHERE user_id = ?`,
		userID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	summary := &logdomain.Summary{
		TotalCalls:     row.Total,
		SendEmailCalls: row.SendCalls,
	}
	if row.Total > 0 {
		summary.SuccessRatio = float64(row.Succeeded) / float64(row.Total)

		var last logdomain.APILog
		err = db.WithContext(ctx).
			Where("user_id = ?", userID).
			Order("created_at DESC").
			First(&last).Error
		if err != nil {
			return nil, err
		}
		summary.LastActivityAt = &last.CreatedAt
	}
	return summary, nil
}
