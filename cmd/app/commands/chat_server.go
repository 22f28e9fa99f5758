package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/talkbase/talkbase/internal/app"
	"github.com/talkbase/talkbase/internal/config"
)

// RunChatServer starts the chat service with graceful shutdown support.
// The chat service serves the REST endpoints and the websocket sessions
// that receive broadcast messages.
func RunChatServer(ctx context.Context, version string) error {
	cfg := config.Load()
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting chat server", slog.String("version", version))

	defer closeContainer(container, logger)

	server, err := container.ChatServer()
	if err != nil {
		return fmt.Errorf("failed to initialize chat server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	return runService(ctx, logger, server, metricsServer)
}
