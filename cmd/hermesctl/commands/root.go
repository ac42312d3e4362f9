package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	logrepo "github.com/indrajit912/hermes/internal/apilog/repository"
	"github.com/indrajit912/hermes/internal/config"
	botrepo "github.com/indrajit912/hermes/internal/emailbot/repository"
	"github.com/indrajit912/hermes/internal/logger"
	"github.com/indrajit912/hermes/internal/mailer"
	"github.com/indrajit912/hermes/internal/migration"
	"github.com/indrajit912/hermes/internal/rotation"
	"github.com/indrajit912/hermes/internal/secrets"
	userdomain "github.com/indrajit912/hermes/internal/user/domain"
	userrepo "github.com/indrajit912/hermes/internal/user/repository"
	usersvc "github.com/indrajit912/hermes/internal/user/service"
	"github.com/indrajit912/hermes/pkg/db"
)

// runtime is the hand-wired slice of the application the CLI needs. The
// server assembles the same pieces through fx; here a flat struct is enough.
type runtime struct {
	cfg       config.Config
	log       *zap.Logger
	db        *gorm.DB
	cipher    *secrets.Cipher
	usersRepo userdomain.Repository
	users     userdomain.Service
	rotation  *rotation.Service
}

var rt *runtime

func Execute() error {
	root := &cobra.Command{
		Use:           "hermesctl",
		Short:         "Administrative CLI for the Hermes mail relay",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			rt, err = newRuntime()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt != nil && rt.log != nil {
				_ = rt.log.Sync()
			}
		},
	}

	root.AddCommand(usersCmd(), keysCmd())
	return root.Execute()
}

func newRuntime() (*runtime, error) {
	cfg := config.Load()

	log, err := logger.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := migration.Run(conn, cfg); err != nil {
		return nil, err
	}

	cipher, err := secrets.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	usersRepo := userrepo.Provide()
	botsRepo := botrepo.Provide()
	logsRepo := logrepo.Provide()

	users := usersvc.New(usersvc.Params{
		DB:       conn,
		Log:      log,
		Repo:     usersRepo,
		Bots:     botsRepo,
		Logs:     logsRepo,
		Cipher:   cipher,
		Notifier: mailer.NoOpNotifier{},
	})

	rot := rotation.New(rotation.Params{
		DB:     conn,
		Log:    log,
		Cfg:    cfg,
		Cipher: cipher,
		Users:  usersRepo,
		Bots:   botsRepo,
	})

	return &runtime{
		cfg:       cfg,
		log:       log,
		db:        conn,
		cipher:    cipher,
		usersRepo: usersRepo,
		users:     users,
		rotation:  rot,
	}, nil
}
