// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/talkbase/talkbase/cmd/app/commands"
	"github.com/talkbase/talkbase/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "talkbase",
		Usage:   "Talkbase chat platform services",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "auth-server",
				Usage: "Start the auth service (registration, login, user lookup)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunAuthServer(ctx, version)
				},
			},
			{
				Name:  "profile-server",
				Usage: "Start the profile service (profile API and provisioning worker)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunProfileServer(ctx, version)
				},
			},
			{
				Name:  "chat-server",
				Usage: "Start the chat service (chat API and websocket sessions)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunChatServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations for one service",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "service",
						Aliases:  []string{"s"},
						Required: true,
						Usage:    "Service whose migrations to run (auth or profile)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
					return commands.RunMigrations(
						logger,
						cfg.DBDriver,
						cfg.DBConnectionString,
						cmd.String("service"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
