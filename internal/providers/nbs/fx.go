package nbs

import (
	"github.com/pausalko/pausalko/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.nbs",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	if cfg.NBSBaseURL == "" {
		return NoOpProvider{}
	}
	return NewHTTP(Config{BaseURL: cfg.NBSBaseURL}, log)
}
