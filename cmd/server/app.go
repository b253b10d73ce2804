package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/gatehouse/internal/alert"
	"github.com/phrazzld/gatehouse/internal/api/errorhandler"
	"github.com/phrazzld/gatehouse/internal/config"
	"github.com/phrazzld/gatehouse/internal/platform/postgres"
	"github.com/phrazzld/gatehouse/internal/service/auth"
)

// application holds all the shared application dependencies. It is built once at
// startup by running initializers in order and torn down by cleanup.
type application struct {
	config *config.Config
	logger *slog.Logger

	db         *postgres.DB
	jwtService auth.JWTService
	dispatcher *alert.Dispatcher
	funnel     *errorhandler.Handler
	router     *chi.Mux
}

// initializer is one named startup step. Steps run in declaration order and may
// rely on everything earlier steps populated.
type initializer struct {
	name string
	run  func(ctx context.Context, app *application) error
}

var initializers = []initializer{
	{name: "database", run: initDatabase},
	{name: "auth", run: initAuth},
	{name: "alerts", run: initAlerts},
	{name: "errors", run: initErrorFunnel},
	{name: "router", run: initRouter},
}

// newApplication runs every initializer. On failure the steps that already ran
// are torn down before the error is returned.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	for _, step := range initializers {
		if err := step.run(ctx, app); err != nil {
			if cleanupErr := app.cleanup(context.Background()); cleanupErr != nil {
				logger.Error("cleanup after failed startup", "error", cleanupErr)
			}
			return nil, fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
		logger.Debug("initialized", "step", step.name)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

func initDatabase(ctx context.Context, app *application) error {
	app.db = postgres.Connect(ctx, app.config.Database, app.logger)
	return nil
}

func initAuth(_ context.Context, app *application) error {
	svc, err := auth.NewJWTService(app.config.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.jwtService = svc
	app.logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", app.config.Auth.TokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", app.config.Auth.RefreshTokenLifetimeMinutes)
	return nil
}

func initAlerts(_ context.Context, app *application) error {
	cfg := app.config.Alert
	if !cfg.Enabled() {
		app.logger.Info("alerting disabled, no Slack webhook configured")
		return nil
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	sender := alert.NewSlackSender(cfg.SlackWebhookURL, &http.Client{Timeout: timeout})
	app.dispatcher = alert.NewDispatcher(sender, alert.DispatcherConfig{
		QueueSize: cfg.QueueSize,
		Workers:   cfg.Workers,
		Timeout:   timeout,
	}, app.logger.With("component", "alert_dispatcher"))

	app.logger.Info("alerting enabled",
		"workers", cfg.Workers,
		"queue_size", cfg.QueueSize)
	return nil
}

func initErrorFunnel(_ context.Context, app *application) error {
	var notifier errorhandler.Notifier
	if app.dispatcher != nil {
		notifier = app.dispatcher
	}
	app.funnel = errorhandler.New(app.logger, notifier)
	return nil
}

func initRouter(_ context.Context, app *application) error {
	app.router = app.setupRouter()
	return nil
}

// cleanup drains pending alerts and closes the database pool, in that order.
// It tolerates a partially initialized application.
func (app *application) cleanup(ctx context.Context) error {
	var errs []error

	if app.dispatcher != nil {
		if err := app.dispatcher.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if app.db != nil {
		app.db.Close()
	}

	app.logger.Info("application shutdown completed")
	return errors.Join(errs...)
}
