package kpo

import (
	"github.com/pausalko/pausalko/internal/kpo/repository"
	"github.com/pausalko/pausalko/internal/kpo/service"
	"go.uber.org/fx"
)

var Module = fx.Module("kpo.service",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
