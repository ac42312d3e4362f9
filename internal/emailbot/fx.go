package emailbot

import (
	"github.com/indrajit912/hermes/internal/emailbot/repository"
	"github.com/indrajit912/hermes/internal/emailbot/service"
	"go.uber.org/fx"
)

var Module = fx.Module("emailbot.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
