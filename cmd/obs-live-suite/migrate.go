package main

import (
	"context"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/config"
	"github.com/deppfellow/obs-live-suite/internal/database"
	"github.com/deppfellow/obs-live-suite/internal/logger"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := logger.NewLogger(cfg.Observability)

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			return database.Migrate(ctx, &log, cfg)
		},
	}
}
