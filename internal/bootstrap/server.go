package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"

	designanalyzer "github.com/menta2k/design-analyzer"
	"github.com/menta2k/design-analyzer/internal/artifact"
	"github.com/menta2k/design-analyzer/internal/config"
	"github.com/menta2k/design-analyzer/internal/imageio"
	"github.com/menta2k/design-analyzer/internal/server"
)

var defaultCORSConfig = middleware.CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodOptions,
	},
	AllowHeaders: []string{
		"Accept",
		"Content-Type",
		"X-Requested-With",
	},
	MaxAge: 86400,
}

func NewEchoServer(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(defaultCORSConfig))
	if cfg.Image.MaxBytes > 0 {
		// 1M of headroom for multipart framing
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", (cfg.Image.MaxBytes+1<<20)/1024)))
	}
	return e
}

func ProvideHandler(a *designanalyzer.Analyzer, loader *imageio.Loader, store artifact.Store, cfg *config.Config, logger *slog.Logger) *server.Handler {
	return server.NewHandler(a, loader, store, cfg.Image.MaxDimension, logger.With("handler", "api"))
}

func RegisterRoutes(e *echo.Echo, h *server.Handler) {
	h.RegisterRoutes(e)
}

func StartServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting server", "addr", cfg.Server.Addr)
			go func() {
				if err := e.Start(cfg.Server.Addr); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

var CoreModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideLoader,
		ProvideArtifactStore,
		ProvideAnalyzer,
	),
)

var ServerModule = fx.Options(
	fx.Provide(NewEchoServer, ProvideHandler),
	fx.Invoke(RegisterRoutes, StartServer),
)

func Run() {
	fx.New(
		fx.Provide(LoadConfig),
		CoreModule,
		ServerModule,
	).Run()
}
