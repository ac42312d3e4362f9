package rotation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/indrajit912/hermes/internal/config"
	botdomain "github.com/indrajit912/hermes/internal/emailbot/domain"
	"github.com/indrajit912/hermes/internal/secrets"
	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	masterKeyEnvVar = "HERMES_MASTER_KEY"
	staticKeyEnvVar = "API_STATIC_KEY"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Cfg    config.Config
	Cipher *secrets.Cipher
	Users  userdomain.Repository
	Bots   botdomain.Repository
}

// Service rewrites every stored secret under a freshly generated master key.
// It is an administrative path and must not run concurrently with request
// traffic: requests decrypt under the active key and would spuriously reject
// valid credentials mid-migration.
type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	cfg    config.Config
	cipher *secrets.Cipher
	users  userdomain.Repository
	bots   botdomain.Repository
}

func New(p Params) *Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("rotation.service"),
		cfg:    p.Cfg,
		cipher: p.Cipher,
		users:  p.Users,
		bots:   p.Bots,
	}
}

// RotateMasterKey decrypts every secret field under the active key and
// rewrites it under a new one, in a single transaction. Only after the commit
// does it persist the new key and swap the in-process cipher, so a failure at
// any row leaves the store fully readable under the old key.
func (s *Service) RotateMasterKey(ctx context.Context) (string, error) {
	newKey, err := secrets.GenerateKey()
	if err != nil {
		return "", err
	}
	newCipher := secrets.New(newKey)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := s.users.FindAll(ctx, tx)
		if err != nil {
			return err
		}
		for i := range users {
			user := &users[i]
			if err := s.reencryptUser(user, newCipher); err != nil {
				return fmt.Errorf("user %s: %w", user.ID, err)
			}
			if err := s.users.Update(ctx, tx, user); err != nil {
				return err
			}
		}

		bots, err := s.bots.FindAll(ctx, tx)
		if err != nil {
			return err
		}
		for i := range bots {
			bot := &bots[i]
			if err := s.reencryptBot(bot, newCipher); err != nil {
				return fmt.Errorf("bot %s: %w", bot.ID, err)
			}
			if err := s.bots.Update(ctx, tx, bot); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("master key rotation aborted, store unchanged", zap.Error(err))
		return "", fmt.Errorf("rotate master key: %w", err)
	}

	if err := config.WriteEnvValue(s.cfg.EnvFile, masterKeyEnvVar, newKey.String()); err != nil {
		// The store is already committed under the new key. Losing it here
		// would strand every stored secret, so swap the live cipher and put
		// the key in front of the operator through both the log and the
		// returned value.
		s.cipher.Rekey(newKey)
		s.log.Error("master key rotated but not persisted; write the env var by hand",
			zap.String(masterKeyEnvVar, newKey.String()),
			zap.Error(err),
		)
		return newKey.String(), fmt.Errorf("rotate master key: persist %s=%s: %w", masterKeyEnvVar, newKey.String(), err)
	}
	s.cipher.Rekey(newKey)

	s.log.Info("master key rotated")
	return newKey.String(), nil
}

// RotateStaticKey replaces the trusted-service key. No stored ciphertext
// depends on it, so this is generate-and-persist only.
func (s *Service) RotateStaticKey() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("rotate static key: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := config.WriteEnvValue(s.cfg.EnvFile, staticKeyEnvVar, token); err != nil {
		return "", fmt.Errorf("rotate static key: persist: %w", err)
	}

	s.log.Info("static service key rotated")
	return token, nil
}

func (s *Service) reencryptUser(user *userdomain.User, newCipher *secrets.Cipher) error {
	if user.APIKeyEncrypted != "" {
		plain, err := user.APIKey(s.cipher)
		if err != nil {
			return err
		}
		if err := user.SetAPIKey(newCipher, plain); err != nil {
			return err
		}
	}
	if user.APIKeyPlainEncrypted != "" {
		plain, err := user.PendingAPIKey(s.cipher)
		if err != nil {
			return err
		}
		if err := user.SetPendingAPIKey(newCipher, plain); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) reencryptBot(bot *botdomain.EmailBot, newCipher *secrets.Cipher) error {
	if bot.EmailEncrypted != "" {
		plain, err := bot.Email(s.cipher)
		if err != nil {
			return err
		}
		if err := bot.SetEmail(newCipher, plain); err != nil {
			return err
		}
	}
	if bot.PasswordEncrypted != "" {
		plain, err := bot.Password(s.cipher)
		if err != nil {
			return err
		}
		if err := bot.SetPassword(newCipher, plain); err != nil {
			return err
		}
	}
	return nil
}
