package mailer

import (
	"github.com/indrajit912/hermes/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideTransport() Transport {
	return NewSMTP()
}

func provideNotifier(cfg config.Config, transport Transport, log *zap.Logger) (Notifier, error) {
	return NewNotifier(cfg.Mail, transport, log)
}

var Module = fx.Module("mailer",
	fx.Provide(provideTransport),
	fx.Provide(provideNotifier),
)
