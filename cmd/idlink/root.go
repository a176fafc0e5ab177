package main

import (
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/idlink/internal/config"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

var configFile string

// NewRootCmd crea el comando raíz.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "idlink",
		Short:         "Federated identity resolution and account linking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML); IDLINK_* env vars override it")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewProvidersCmd())
	return cmd
}

// loadConfig carga la config e inicializa el logger global.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, ServiceName: "idlink"})
	return cfg, nil
}
