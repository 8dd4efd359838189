package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/dmitrymomot/postcard/emails"
	"github.com/dmitrymomot/postcard/handlers"
	"github.com/dmitrymomot/postcard/internal"
	"github.com/dmitrymomot/postcard/middlewares"
	"github.com/dmitrymomot/postcard/pkg/card"
	"github.com/dmitrymomot/postcard/pkg/config"
	"github.com/dmitrymomot/postcard/pkg/logger"
	"github.com/dmitrymomot/postcard/pkg/mailer"
	"github.com/dmitrymomot/postcard/pkg/mailer/resend"
	"github.com/dmitrymomot/postcard/pkg/storage"
	"github.com/dmitrymomot/postcard/views"
)

// Config is the application configuration, read from the environment and .env.
type Config struct {
	Addr            string        `env:"APP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Log     logger.Config
	Card    card.Config
	Web     handlers.Config
	Storage storage.Config
	Resend  resend.Config
	Mailer  mailer.Config
}

func main() {
	cfg, err := config.Load[Config]()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.Log, middlewares.RequestIDExtractor())

	if err := run(cfg, log); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}
}

func run(cfg Config, log *slog.Logger) error {
	ctx := context.Background()

	source, store, err := assetSource(cfg)
	if err != nil {
		return err
	}

	layout, err := cfg.Card.LoadLayout()
	if err != nil {
		return err
	}

	renderer, err := card.New(ctx, source, layout,
		card.WithLogger(logger.Component(log, "card")),
		card.WithMaxMessageLength(cfg.Card.MaxMessageLength),
	)
	if err != nil {
		return err
	}

	templates, err := mailer.NewRenderer(emails.FS, mailer.RendererConfig{})
	if err != nil {
		return err
	}
	mail := mailer.New(resend.New(cfg.Resend), templates, cfg.Mailer)

	healthOpts := []internal.HealthOption{
		internal.WithReadinessTimeout(5 * time.Second),
	}
	if store != nil {
		healthOpts = append(healthOpts, internal.WithReadinessCheck("assets", store.Ping))
	}

	app := internal.New(
		internal.WithLogger(log),
		internal.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Logging(middlewares.WithLoggingSkipPaths("/health/live", "/health/ready")),
			middlewares.Recover(),
		),
		internal.WithErrorHandler(handlers.ErrorHandler),
		internal.WithNotFoundHandler(handlers.NotFound),
		internal.WithMethodNotAllowedHandler(handlers.MethodNotAllowed),
		internal.WithStaticFiles("/static/", views.StaticFS, "static"),
		internal.WithHealthChecks(healthOpts...),
		internal.WithHandlers(handlers.NewPostcard(renderer, mail, cfg.Web)),
	)

	return app.Run(cfg.Addr,
		internal.ShutdownTimeout(cfg.ShutdownTimeout),
		internal.OnReady(func(addr net.Addr) {
			log.Info("postcard service ready", slog.String("addr", addr.String()))
		}),
		internal.ShutdownHook(func(context.Context) error {
			logger.Flush(2 * time.Second)
			return nil
		}),
	)
}

// assetSource reads assets from S3 when a bucket is configured and from
// the local assets directory otherwise. The store is returned for health checks.
func assetSource(cfg Config) (card.Source, *storage.S3Storage, error) {
	if !cfg.Storage.Enabled() {
		return card.NewFSSource(os.DirFS(cfg.Card.AssetsDir)), nil, nil
	}

	store, err := storage.New(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	return card.NewStorageSource(store, "", storage.IsNotFound), store, nil
}
