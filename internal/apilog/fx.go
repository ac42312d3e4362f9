package apilog

import (
	"github.com/indrajit912/hermes/internal/apilog/repository"
	"github.com/indrajit912/hermes/internal/apilog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("apilog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
