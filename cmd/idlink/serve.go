package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/idlink/internal/app"
	"github.com/dropDatabas3/idlink/internal/http/server"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

// NewServeCmd crea el subcomando serve.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if err := cfg.ValidateServe(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := app.Build(ctx, cfg, app.Options{})
			if err != nil {
				return err
			}
			defer c.Close()

			return server.New(server.Config{Addr: cfg.Server.Addr}, c.Handler).Run(ctx)
		},
	}
}

