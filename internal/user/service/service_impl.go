package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	logdomain "github.com/indrajit912/hermes/internal/apilog/domain"
	botdomain "github.com/indrajit912/hermes/internal/emailbot/domain"
	"github.com/indrajit912/hermes/internal/mailer"
	"github.com/indrajit912/hermes/internal/secrets"
	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	"github.com/indrajit912/hermes/pkg/db"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// errAlreadyApproved aborts the approval transaction without treating the
// situation as a failure.
var errAlreadyApproved = errors.New("already approved")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Repo     userdomain.Repository
	Bots     botdomain.Repository
	Logs     logdomain.Repository
	Cipher   *secrets.Cipher
	Notifier mailer.Notifier
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     userdomain.Repository
	bots     botdomain.Repository
	logs     logdomain.Repository
	cipher   *secrets.Cipher
	notifier mailer.Notifier
}

func New(p Params) userdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("user.service"),
		repo:     p.Repo,
		bots:     p.Bots,
		logs:     p.Logs,
		cipher:   p.Cipher,
		notifier: p.Notifier,
	}
}

// Register creates a pending user. The personal key is generated here, held
// encrypted in the pending field, and revealed only through the approval
// notification.
func (s *Service) Register(ctx context.Context, req userdomain.RegisterRequest) (*userdomain.RegisterResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" {
		return nil, userdomain.ErrInvalidInput
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, userdomain.ErrInvalidEmail
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, userdomain.ErrEmailTaken
	}

	plainKey := strings.ReplaceAll(uuid.NewString(), "-", "")
	user := &userdomain.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if err := user.SetPendingAPIKey(s.cipher, plainKey); err != nil {
		return nil, err
	}

	if err := s.repo.Insert(ctx, s.db, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, userdomain.ErrEmailTaken
		}
		return nil, err
	}

	s.notifyAdmins(ctx, user)

	return &userdomain.RegisterResponse{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		APIKeyApproved: user.APIKeyApproved,
	}, nil
}

// Approve moves a user from pending to approved: the plaintext key leaves the
// pending field, lands in the permanent encrypted field, and is mailed to the
// user exactly once. Re-approving is a no-op.
func (s *Service) Approve(ctx context.Context, userID string) (*userdomain.ApproveResult, error) {
	var (
		plainKey  string
		userEmail string
		userName  string
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.repo.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return userdomain.ErrNotFound
		}
		if user.APIKeyApproved {
			return errAlreadyApproved
		}

		pending, err := user.PendingAPIKey(s.cipher)
		if err != nil {
			return err
		}
		if pending == "" {
			return userdomain.ErrNoPendingKey
		}

		if err := user.SetAPIKey(s.cipher, pending); err != nil {
			return err
		}
		if err := user.SetPendingAPIKey(s.cipher, ""); err != nil {
			return err
		}

		// The conditional update is what makes the transition exclusive: a
		// concurrent approval that committed between our read and this write
		// matches zero rows instead of re-releasing the key.
		won, err := s.repo.MarkApproved(ctx, tx, user)
		if err != nil {
			return err
		}
		if !won {
			return errAlreadyApproved
		}

		plainKey = pending
		userEmail = user.Email
		userName = user.Name
		return nil
	})
	if errors.Is(err, errAlreadyApproved) {
		return &userdomain.ApproveResult{UserID: userID, AlreadyApproved: true}, nil
	}
	if err != nil {
		return nil, err
	}

	// The approval is committed; a mail failure is reported, not rolled back.
	notified := true
	if err := s.notifier.SendTemplate(ctx, []string{userEmail}, "Hermes - Your API key has been approved", "api_key_approved", map[string]any{
		"name":    userName,
		"api_key": plainKey,
	}); err != nil {
		notified = false
		s.log.Warn("approval notification failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}

	s.log.Info("user approved", zap.String("user_id", userID))
	return &userdomain.ApproveResult{
		UserID:   userID,
		APIKey:   plainKey,
		Notified: notified,
	}, nil
}

func (s *Service) List(ctx context.Context) ([]userdomain.View, error) {
	users, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}

	views := make([]userdomain.View, 0, len(users))
	for i := range users {
		views = append(views, toView(&users[i]))
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*userdomain.View, error) {
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userdomain.ErrNotFound
	}
	view := toView(user)
	return &view, nil
}

// Delete removes the user and everything it owns.
func (s *Service) Delete(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.repo.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return userdomain.ErrNotFound
		}

		if err := tx.Delete(&botdomain.EmailBot{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&logdomain.APILog{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, userID)
	})
}

func (s *Service) SetBlocked(ctx context.Context, userID string, blocked bool) error {
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return userdomain.ErrNotFound
	}
	user.IsBlocked = blocked
	return s.repo.Update(ctx, s.db, user)
}

// RotateOwnKey regenerates the caller's personal key and returns the new
// plaintext once. The caller must already be approved.
func (s *Service) RotateOwnKey(ctx context.Context, userID string) (string, error) {
	var plainKey string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.repo.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return userdomain.ErrNotFound
		}
		if !user.APIKeyApproved {
			return userdomain.ErrNotApproved
		}

		plainKey = strings.ReplaceAll(uuid.NewString(), "-", "")
		if err := user.SetAPIKey(s.cipher, plainKey); err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, user)
	})
	if err != nil {
		return "", err
	}

	s.log.Info("personal key rotated", zap.String("user_id", userID))
	return plainKey, nil
}

func (s *Service) notifyAdmins(ctx context.Context, user *userdomain.User) {
	admins, err := s.repo.FindAdmins(ctx, s.db)
	if err != nil {
		s.log.Warn("admin lookup for registration notice failed", zap.Error(err))
		return
	}
	if len(admins) == 0 {
		return
	}

	emails := make([]string, 0, len(admins))
	for _, admin := range admins {
		emails = append(emails, admin.Email)
	}

	err = s.notifier.SendTemplate(ctx, emails, "Hermes - New user registration pending approval", "new_user_notification", map[string]any{
		"name":    user.Name,
		"email":   user.Email,
		"user_id": user.ID,
	})
	if err != nil {
		s.log.Warn("registration notification failed",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}

func toView(user *userdomain.User) userdomain.View {
	return userdomain.View{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		IsAdmin:        user.IsAdmin,
		APIKeyApproved: user.APIKeyApproved,
		IsBlocked:      user.IsBlocked,
		JoinedAt:       user.CreatedAt,
	}
}
