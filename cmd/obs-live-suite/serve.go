package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/obs-live-suite/internal/config"
	"github.com/deppfellow/obs-live-suite/internal/database"
	"github.com/deppfellow/obs-live-suite/internal/handler"
	"github.com/deppfellow/obs-live-suite/internal/logger"
	"github.com/deppfellow/obs-live-suite/internal/repository"
	"github.com/deppfellow/obs-live-suite/internal/router"
	"github.com/deppfellow/obs-live-suite/internal/server"
	"github.com/deppfellow/obs-live-suite/internal/service"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, overlay hub and background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(skipMigrate)
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not run database migrations on start")
	return cmd
}

func serve(skipMigrate bool) error {
	cfg := config.LoadConfig()

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if !skipMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := database.Migrate(ctx, &log, cfg)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewServices(srv, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create services")
	}

	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 15*time.Second)
	services.Restore(restoreCtx)
	cancelRestore()

	if err := srv.StartBackground(); err != nil {
		log.Fatal().Err(err).Msg("failed to start background workers")
	}

	if cfg.Media.WatchEnabled {
		if err := services.Assets.StartWatching(); err != nil {
			log.Warn().Err(err).Str("dir", cfg.Media.AssetsDir).Msg("asset watcher disabled")
		}
	}

	if err := services.Health.StartPeriodic(srv.Cron); err != nil {
		log.Warn().Err(err).Msg("periodic health checks disabled")
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers, services)
	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := services.Close(); err != nil {
		log.Warn().Err(err).Msg("closing services")
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server exited properly")
	return nil
}
