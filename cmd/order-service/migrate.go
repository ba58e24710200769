package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmehra2102/ordersystem/internal/store/postgres"
	"github.com/dmehra2102/ordersystem/pkg/config"
	"github.com/dmehra2102/ordersystem/pkg/logging"
)

func migrateCmd(load func() (config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			log := logging.New(logging.Options{Service: serviceName, Env: cfg.AppEnv, Level: cfg.LogLevel})

			db, err := postgres.Open(cmd.Context(), log, cfg.PGURL)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info("schema applied")
			return nil
		},
	}
}
