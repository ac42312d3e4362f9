package main

import (
	"github.com/indrajit912/hermes/internal/apilog"
	"github.com/indrajit912/hermes/internal/config"
	"github.com/indrajit912/hermes/internal/emailbot"
	"github.com/indrajit912/hermes/internal/identity"
	"github.com/indrajit912/hermes/internal/logger"
	"github.com/indrajit912/hermes/internal/mailer"
	"github.com/indrajit912/hermes/internal/migration"
	"github.com/indrajit912/hermes/internal/rotation"
	"github.com/indrajit912/hermes/internal/secrets"
	"github.com/indrajit912/hermes/internal/server"
	"github.com/indrajit912/hermes/internal/user"
	"github.com/indrajit912/hermes/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		db.Module,
		secrets.Module,
		migration.Module,

		// Functional domains
		user.Module,
		emailbot.Module,
		apilog.Module,
		mailer.Module,
		identity.Module,
		rotation.Module,

		// HTTP surface
		server.Module,
	)
	app.Run()
}
