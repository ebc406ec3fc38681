package user

import (
	"github.com/pausalko/pausalko/internal/user/domain"
	"github.com/pausalko/pausalko/internal/user/service"
	"github.com/pausalko/pausalko/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(
		repository.ProvideStore[domain.User],
		service.New,
	),
)
