package user

import (
	"github.com/indrajit912/hermes/internal/user/repository"
	"github.com/indrajit912/hermes/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
