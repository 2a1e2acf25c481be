package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/authgate/internal/gateway/http"
	"github.com/aussiebroadwan/authgate/internal/gateway/metrics"
	"github.com/aussiebroadwan/authgate/internal/gateway/provider"
	"github.com/aussiebroadwan/authgate/internal/gateway/secrets"
	"github.com/aussiebroadwan/authgate/internal/gateway/service"
	"github.com/aussiebroadwan/authgate/internal/gateway/store/drivers/sqlite"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags.
var BuildVersion = "v0.1.0"

// Application owns every long-lived dependency of the gateway.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       *sqlite.Store
	secrets  *secrets.FileSource
	registry *provider.Registry
	metrics  *metrics.Metrics

	housekeeping *service.HousekeepingService

	server *http.Server
	router *httpapi.Router

	stopWatch context.CancelFunc
	watchDone chan struct{}
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: cfg.AppName,
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// OpenStore opens the credential store and applies pending migrations.
func OpenStore(cfg Config) (*sqlite.Store, error) {
	db, err := sqlite.NewStore(sqlite.FileDSN(cfg.DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

// New wires the gateway. Nothing is listening until Run is called.
func New(cfg Config, logger *slog.Logger) (*Application, error) {
	app := &Application{cfg: cfg, logger: logger}

	db, err := OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	app.db = db
	logger.Info("database migrations applied", "file", cfg.DatabaseFile)

	registry, err := provider.LoadRegistry(cfg.ProvidersFile)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	app.registry = registry

	app.secrets = secrets.NewFileSource(cfg.SecretsFile, logger)
	if err := app.secrets.Check(); err != nil {
		logger.Warn("secrets file not readable yet", "path", cfg.SecretsFile, "error", err)
	}

	app.metrics = metrics.New()

	if err := app.initHTTP(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func (app *Application) initHTTP() error {
	cfg := app.cfg

	sessions, err := service.NewSessionService(app.secrets.Get(cfg.SessionSecretKey), cfg.PublicURL, cfg.SessionTTL, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}

	exchanger := &provider.Exchanger{
		Registry:  app.registry,
		Secrets:   app.secrets,
		PublicURL: cfg.PublicURL,
		Timeout:   cfg.ExchangeTimeout,
	}
	assertions := &service.AssertionService{
		Secrets:    app.secrets,
		VerifyKey:  cfg.AssertionSecretKey,
		HandoffKey: cfg.WebhookSecretKey,
		Metrics:    app.metrics,
	}
	links := &service.MagicLinkService{
		Store:     app.db,
		PublicURL: cfg.PublicURL,
		MaxHours:  cfg.MaxMagicLinkHours,
		Metrics:   app.metrics,
	}
	relay := &service.RelayService{
		Store:     app.db,
		Secrets:   app.secrets,
		SecretKey: cfg.WebhookSecretKey,
		GatewayID: cfg.GatewayID,
		Timeout:   cfg.WebhookTimeout,
		Metrics:   app.metrics,
	}

	app.housekeeping = service.NewHousekeepingService(app.db, app.logger, cfg.HousekeepingInterval, cfg.MagicLinkRetention)
	app.housekeeping.Metrics = app.metrics

	router := httpapi.NewRouter(httpapi.Options{
		ServiceName:   cfg.AppName,
		BuildVersion:  BuildVersion,
		AdminLoginURL: cfg.AdminLoginURL,
		SecureCookies: cfg.SecureCookies,

		TrustProxyHeaders: cfg.TrustProxyHeaders,
	}, app.db, app.secrets, app.registry, app.metrics, app.logger)

	router.Exchanger = exchanger
	router.CallbackService = &service.CallbackService{
		Registry:  app.registry,
		Exchanger: exchanger,
		Relay:     relay,
		Secrets:   app.secrets,
		Metrics:   app.metrics,
	}
	router.HandoffService = &service.HandoffService{Store: app.db, MagicLinks: links, Assertions: assertions}
	router.AdminService = &service.AdminService{
		Store:      app.db,
		Assertions: assertions,
		Sessions:   sessions,
		MagicLinks: links,
		GatewayID:  cfg.GatewayID,
	}
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts background workers and the HTTP server, and blocks until a
// shutdown signal arrives or the server fails.
func (app *Application) Run() error {
	app.housekeeping.Start()
	app.startWatcher()

	app.logger.Info("authgate starting",
		"port", app.cfg.Port,
		"public_url", app.cfg.PublicURL,
		"providers", len(app.registry.Exchangeable()),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Shutdown()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

func (app *Application) startWatcher() {
	if !app.cfg.WatchSecrets {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	app.stopWatch = cancel
	app.watchDone = make(chan struct{})

	go func() {
		defer close(app.watchDone)
		if err := app.secrets.Watch(ctx); err != nil {
			app.logger.Warn("secrets watcher stopped, cache is refreshed only on writes", "error", err)
		}
	}()
}

// Shutdown drains in-flight requests and releases resources.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down authgate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.stopWatch != nil {
		app.stopWatch()
		<-app.watchDone
	}
	app.housekeeping.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("authgate stopped")
	return nil
}
