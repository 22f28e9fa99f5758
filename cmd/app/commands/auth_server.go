package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/talkbase/talkbase/internal/app"
	"github.com/talkbase/talkbase/internal/config"
)

// RunAuthServer starts the auth service with graceful shutdown support.
// Besides the HTTP server it runs the outbox relay, which retries the
// user lifecycle events whose synchronous publish failed.
func RunAuthServer(ctx context.Context, version string) error {
	cfg := config.Load()
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting auth server", slog.String("version", version))

	defer closeContainer(container, logger)

	server, err := container.AuthServer()
	if err != nil {
		return fmt.Errorf("failed to initialize auth server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	outboxUseCase, err := container.OutboxUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize outbox relay: %w", err)
	}

	return runService(ctx, logger, server, metricsServer, outboxUseCase.Start)
}
