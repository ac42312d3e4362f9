package identity

import (
	"github.com/indrajit912/hermes/internal/config"
	"github.com/indrajit912/hermes/internal/secrets"
	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func provideResolver(db *gorm.DB, users userdomain.Repository, cipher *secrets.Cipher, cfg config.Config) *Resolver {
	return NewResolver(db, users, cipher, cfg.StaticKey)
}

var Module = fx.Module("identity",
	fx.Provide(provideResolver),
)
