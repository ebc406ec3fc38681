package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pausalko/pausalko/internal/artikal"
	artikaldomain "github.com/pausalko/pausalko/internal/artikal/domain"
	"github.com/pausalko/pausalko/internal/config"
	"github.com/pausalko/pausalko/internal/faktura"
	fakturadomain "github.com/pausalko/pausalko/internal/faktura/domain"
	"github.com/pausalko/pausalko/internal/firma"
	firmadomain "github.com/pausalko/pausalko/internal/firma/domain"
	"github.com/pausalko/pausalko/internal/komitent"
	komitentdomain "github.com/pausalko/pausalko/internal/komitent/domain"
	"github.com/pausalko/pausalko/internal/kpo"
	kpodomain "github.com/pausalko/pausalko/internal/kpo/domain"
	"github.com/pausalko/pausalko/internal/migration"
	"github.com/pausalko/pausalko/internal/numbering"
	"github.com/pausalko/pausalko/internal/observability"
	"github.com/pausalko/pausalko/internal/providers/email"
	"github.com/pausalko/pausalko/internal/providers/nbs"
	"github.com/pausalko/pausalko/internal/providers/pdf"
	"github.com/pausalko/pausalko/internal/tasks"
	"github.com/pausalko/pausalko/internal/user"
	userdomain "github.com/pausalko/pausalko/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	observability.Module,
	migration.Module,
	email.Module,
	pdf.Module,
	nbs.Module,
	tasks.Module,
	numbering.Module,
	user.Module,
	firma.Module,
	komitent.Module,
	artikal.Module,
	faktura.Module,
	kpo.Module,
	fx.Provide(NewEngine),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ScopeMiddleware())
	r.Use(ErrorHandlingMiddleware(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type RouteParams struct {
	fx.In

	Engine      *gin.Engine
	Registry    nbs.Provider
	UserSvc     userdomain.Service
	FirmaSvc    firmadomain.Service
	KomitentSvc komitentdomain.Service
	ArtikalSvc  artikaldomain.Service
	FakturaSvc  fakturadomain.Service
	KPOSvc      kpodomain.Service
}

func RegisterRoutes(p RouteParams) {
	api := p.Engine.Group("/api/v1")
	registerUserRoutes(api, p.UserSvc)
	registerFirmaRoutes(api, p.FirmaSvc)
	registerKomitentRoutes(api, p.KomitentSvc, p.Registry)
	registerArtikalRoutes(api, p.ArtikalSvc)
	registerFakturaRoutes(api, p.FakturaSvc)
	registerKPORoutes(api, p.KPOSvc)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
