package migration

import (
	logdomain "github.com/indrajit912/hermes/internal/apilog/domain"
	"github.com/indrajit912/hermes/internal/config"
	botdomain "github.com/indrajit912/hermes/internal/emailbot/domain"
	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Run brings the schema up to date for the configured database.
func Run(conn *gorm.DB, cfg config.Config) error {
	if cfg.DBType != "postgres" {
		// sqlite deployments (and tests) build the schema from the models.
		return conn.AutoMigrate(
			&userdomain.User{},
			&botdomain.EmailBot{},
			&logdomain.APILog{},
		)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

var Module = fx.Module("migrations",
	fx.Invoke(Run),
)
