package tasks

import (
	"context"
	"time"

	"github.com/pausalko/pausalko/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("tasks",
	fx.Provide(
		NewConfig,
		New,
	),
	fx.Invoke(registerLifecycle),
)

func NewConfig(cfg config.Config) Config {
	return Config{
		MaxAttempts: cfg.TaskMaxAttempts,
		BaseDelay:   time.Duration(cfg.TaskBaseDelayMS) * time.Millisecond,
	}
}

func registerLifecycle(lc fx.Lifecycle, d *Dispatcher) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return d.Shutdown(ctx)
		},
	})
}
