package komitent

import (
	"github.com/pausalko/pausalko/internal/komitent/repository"
	"github.com/pausalko/pausalko/internal/komitent/service"
	"go.uber.org/fx"
)

var Module = fx.Module("komitent.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
