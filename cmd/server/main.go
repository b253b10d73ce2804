// Package main implements the entry point for the gatehouse API server, which
// issues and verifies JWT credentials and funnels every request failure through
// a single error handler that logs, alerts and shapes the response.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/phrazzld/gatehouse/internal/config"
	"github.com/phrazzld/gatehouse/internal/platform/logger"
)

//go:generate swag init --generalInfo main.go --dir ./,../../internal/api --output ../../docs --parseInternal

// @title           gatehouse API
// @version         1.0
// @description     Issues and verifies JWT credentials. Every failure is answered with {statusCode, error, message}.

// @host      localhost:3000
// @BasePath  /

// @tag.name         auth
// @tag.description  Authentication API

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and a JWT access token.

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// run loads configuration, builds the application and serves until a shutdown
// signal arrives.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"environment", cfg.Server.Environment)
	l.Debug("optional integrations",
		"database_configured", cfg.Database.Configured(),
		"alerts_enabled", cfg.Alert.Enabled())

	app, err := newApplication(ctx, cfg, l)
	if err != nil {
		return err
	}

	return app.startHTTPServer(ctx)
}
