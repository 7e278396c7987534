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

	goredis "github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/bartab/internal/auth/domain"
	httpapi "github.com/aussiebroadwan/bartab/internal/auth/http"
	"github.com/aussiebroadwan/bartab/internal/auth/metrics"
	"github.com/aussiebroadwan/bartab/internal/auth/notify"
	"github.com/aussiebroadwan/bartab/internal/auth/service"
	"github.com/aussiebroadwan/bartab/internal/auth/store"
	"github.com/aussiebroadwan/bartab/internal/auth/store/drivers/memory"
	"github.com/aussiebroadwan/bartab/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/bartab/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/bartab/pkg/cryptox"
	"github.com/aussiebroadwan/bartab/pkg/httpx"
	"github.com/aussiebroadwan/bartab/pkg/jwtx"
	"github.com/aussiebroadwan/bartab/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	hasher   *cryptox.Hasher
	signer   *jwtx.HS256
	notifier notify.Notifier
	metrics  *metrics.Metrics

	// Services
	tokenService        *service.TokenService
	loginService        *service.LoginService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService // nil when the store expires keys itself

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// Option overrides a dependency New would otherwise build from Config.
type Option func(*Application)

// WithNotifier replaces the configured notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(app *Application) { app.notifier = n }
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config, opts ...Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(app)
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewHasher(pepper, cryptox.DefaultArgon2Params)

	signer, err := jwtx.NewHS256([]byte(cfg.JWTSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.signer = signer

	if err := app.initStore(); err != nil {
		return nil, err
	}

	if err := app.initNotifier(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
	}

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.StoreDriver,
		"notifier", app.cfg.Notifier,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.housekeepingService != nil {
		app.housekeepingService.Stop()
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initStore opens the configured store driver.
func (app *Application) initStore() error {
	switch app.cfg.StoreDriver {
	case StoreSQLite:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn, app.hasher)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := db.ApplyMigrations(); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to apply database migrations: %w", err)
		}
		app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
		app.db = db

	case StoreRedis:
		client := goredis.NewUniversalClient(&goredis.UniversalOptions{
			Addrs:    []string{app.cfg.RedisAddr},
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
		})
		db := redis.NewStore(client, app.hasher)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to reach redis at %s: %w", app.cfg.RedisAddr, err)
		}
		app.db = db

	default:
		app.logger.Warn("using in-memory store; all users and sessions are lost on restart")
		app.db = memory.NewStore(app.hasher)
	}
	return nil
}

// initNotifier builds the notifier that delivers two-factor codes.
func (app *Application) initNotifier() error {
	if app.notifier != nil {
		return nil
	}

	switch app.cfg.Notifier {
	case NotifierPostmark:
		sender, err := domain.ParseEmail(app.cfg.PostmarkSender)
		if err != nil {
			return fmt.Errorf("invalid POSTMARK_SENDER: %w", err)
		}
		pm, err := notify.NewPostmark(notify.PostmarkConfig{
			BaseURL: app.cfg.PostmarkBaseURL,
			Token:   domain.NewSecret(app.cfg.PostmarkToken),
			Sender:  sender,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize postmark notifier: %w", err)
		}
		app.notifier = pm

	default:
		app.logger.Warn("two-factor codes are written to the log; do not use outside development")
		app.notifier = notify.NewLog(app.logger)
	}
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = service.NewTokenService(app.signer, app.db.RevokedTokens(), app.cfg.TokenTTL)
	app.tokenService.Cookies.Secure = app.cfg.CookieSecure
	app.tokenService.Metrics = app.metrics

	app.loginService = &service.LoginService{
		Users:        app.db.Users(),
		Challenges:   app.db.Challenges(),
		Notifier:     app.notifier,
		Tokens:       app.tokenService,
		ChallengeTTL: app.cfg.ChallengeTTL,
		Metrics:      app.metrics,
	}

	app.userService = &service.UserService{
		Users:   app.db.Users(),
		Hasher:  app.hasher,
		Metrics: app.metrics,
	}

	// Redis expires keys natively; the other drivers need sweeping.
	if sweeper, ok := app.db.(store.Sweeper); ok {
		app.housekeepingService = service.NewHousekeepingService(
			sweeper,
			app.logger,
			app.cfg.HousekeepingInterval,
		)
		app.housekeepingService.Metrics = app.metrics
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.TokenService = app.tokenService
	router.LoginService = app.loginService
	router.UserService = app.userService
	if proxies, err := app.cfg.TrustedProxyPrefixes(); err == nil && len(proxies) > 0 {
		router.ClientIP = httpx.TrustedProxyIPKeyExtractor(proxies)
	}
	if !app.cfg.MetricsDisabled {
		router.Metrics = app.metrics
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
