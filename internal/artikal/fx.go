package artikal

import (
	"github.com/pausalko/pausalko/internal/artikal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("artikal.service",
	fx.Provide(service.New),
)
