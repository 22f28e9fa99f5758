package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/talkbase/talkbase/internal/app"
	"github.com/talkbase/talkbase/internal/config"
)

// RunProfileServer starts the profile service with graceful shutdown support.
// Besides the HTTP server it runs the provisioning worker, which consumes
// user lifecycle events and creates a profile for every new user.
func RunProfileServer(ctx context.Context, version string) error {
	cfg := config.Load()
	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting profile server", slog.String("version", version))

	defer closeContainer(container, logger)

	server, err := container.ProfileServer()
	if err != nil {
		return fmt.Errorf("failed to initialize profile server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	worker, err := container.ProvisioningWorker()
	if err != nil {
		return fmt.Errorf("failed to initialize provisioning worker: %w", err)
	}

	return runService(ctx, logger, server, metricsServer, worker.Run)
}
