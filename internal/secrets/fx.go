package secrets

import (
	"fmt"

	"github.com/indrajit912/hermes/internal/config"
	"go.uber.org/fx"
)

// NewFromConfig builds the process-wide cipher from the configured master key.
func NewFromConfig(cfg config.Config) (*Cipher, error) {
	if cfg.MasterKey == "" {
		return nil, fmt.Errorf("HERMES_MASTER_KEY is not set")
	}
	key, err := ParseKey(cfg.MasterKey)
	if err != nil {
		return nil, err
	}
	return New(key), nil
}

var Module = fx.Module("secrets",
	fx.Provide(NewFromConfig),
)
