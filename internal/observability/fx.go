package observability

import (
	"github.com/pausalko/pausalko/internal/config"
	"github.com/pausalko/pausalko/internal/observability/logger"
	"github.com/pausalko/pausalko/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(func(cfg config.Config) logger.Config {
		return logger.Config{
			ServiceName:         cfg.AppName,
			Environment:         cfg.Environment,
			Version:             cfg.AppVersion,
			Level:               cfg.LogLevel,
			Format:              cfg.LogFormat,
			IncludeCaller:       true,
			IncludeStackOnError: true,
		}
	}),
	fx.Provide(logger.New),
	fx.Provide(metrics.New),
)
