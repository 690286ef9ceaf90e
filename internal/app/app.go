package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ringsaturn/tzf"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"myspace/internal/backend"
	"myspace/internal/bot"
	"myspace/internal/config"
	"myspace/internal/metrics"
	"myspace/internal/settings"
)

const shutdownTimeout = 5 * time.Second

// App represents the application
type App struct {
	config   *config.Config
	logger   *zap.Logger
	metrics  *metrics.Metrics
	store    *settings.Store
	settings *settings.Settings
	bot      *bot.Bot
	watcher  *settings.Watcher
	server   *http.Server
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if envErr != nil {
		logger.Info("No .env file found, using system environment variables")
	}

	app := &App{
		config:  cfg,
		logger:  logger,
		metrics: metrics.Default(),
	}

	logger.Info("Starting My Space bot...")

	if err := app.initSettings(); err != nil {
		return nil, err
	}
	app.initBot()
	app.initHTTPServer()

	return app, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Debug() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// initSettings loads the settings file, seeding it from the environment on first run
func (a *App) initSettings() error {
	offset, err := a.config.TimezoneOffsetMinutes()
	if err != nil {
		return err
	}

	a.store = settings.NewStore(a.config.Telegram.SettingsPath, a.logger)
	st, err := a.store.Ensure(settings.Seed{
		Token:                 a.config.Telegram.Token,
		AllowedUserID:         a.config.AllowedUserID(),
		TimezoneOffsetMinutes: offset,
		TimezoneCity:          a.config.Telegram.TimezoneCity,
		TimezoneIANA:          a.config.Telegram.Timezone,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize settings: %w", err)
	}
	a.settings = st

	// The watcher needs the directory even before the first write
	if err := os.MkdirAll(filepath.Dir(a.store.Path()), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	return nil
}

// initBot wires the backend client, timezone finder and settings watcher into the bot
func (a *App) initBot() {
	client := backend.NewClient(a.config.BackendURL, a.logger, backend.WithMetrics(a.metrics))
	a.logger.Info("Using backend", zap.String("url", client.BaseURL()))

	opts := []bot.Option{bot.WithMetrics(a.metrics)}
	finder, err := tzf.NewDefaultFinder()
	if err != nil {
		a.logger.Warn("Timezone finder unavailable, location sharing is disabled", zap.Error(err))
	} else {
		opts = append(opts, bot.WithZoneFinder(finder))
	}

	a.bot = bot.NewBot(client, a.store, a.logger, opts...)
	a.watcher = settings.NewWatcher(a.store.Path(), settings.DefaultDebounce, a.bot.ReloadSettings, a.logger)
}

// initHTTPServer initializes the HTTP server for health checks, metrics, settings and file proxy
func (a *App) initHTTPServer() {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "OK")
	})
	r.Handle("/metrics", promhttp.Handler())
	settings.NewHandler(a.store, a.logger).RegisterRoutes(r)
	a.bot.RegisterRoutes(r)

	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.watcher.Start(); err != nil {
		a.logger.Warn("Settings hot reload is disabled", zap.Error(err))
	}
	defer a.watcher.Stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.bot.Run(ctx, a.settings)
	})

	g.Go(func() error {
		<-ctx.Done()
		a.logger.Info("Shutting down...")
		return a.Shutdown()
	})

	err := g.Wait()
	a.logger.Info("Shutdown complete")
	_ = a.logger.Sync()
	return err
}

// Shutdown gracefully stops the HTTP server
func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}
	return nil
}
