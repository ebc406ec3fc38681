package firma

import (
	"github.com/pausalko/pausalko/internal/firma/service"
	"go.uber.org/fx"
)

var Module = fx.Module("firma.service",
	fx.Provide(service.New),
)
