package main

import (
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/idlink/internal/identity"
)

// NewProvidersCmd lista los providers habilitados, en orden de declaración.
func NewProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List enabled identity providers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			for _, p := range identity.NewRegistry(cfg.Providers).EnabledProviders() {
				cmd.Printf("%s\t%s\n", p.Key, p.DisplayName)
			}
			return nil
		},
	}
}
