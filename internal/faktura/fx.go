package faktura

import (
	"github.com/pausalko/pausalko/internal/faktura/repository"
	"github.com/pausalko/pausalko/internal/faktura/service"
	"go.uber.org/fx"
)

var Module = fx.Module("faktura.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
