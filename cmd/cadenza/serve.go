package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/cadenza/internal/adapters/plex"
	"github.com/ewilliams-labs/cadenza/internal/adapters/rest"
	"github.com/ewilliams-labs/cadenza/internal/adapters/sqlite"
	"github.com/ewilliams-labs/cadenza/internal/core/services"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			repo, err := sqlite.NewAdapter(cfg.DBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			catalog := plex.NewClient(
				&http.Client{Timeout: 30 * time.Second},
				cfg.PlexURL, cfg.PlexToken, cfg.PlexSection,
				plex.WithLogger(log),
			)

			engine := services.NewEngine(catalog, services.WithLogger(log))
			handler := rest.NewHandler(engine, catalog, repo, log)

			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           handler,
				ReadHeaderTimeout: 15 * time.Second,
			}

			log.Info().Str("addr", cfg.HTTPAddr).Msg("cadenza api listening")

			serverErr := make(chan error, 1)
			go func() {
				err := srv.ListenAndServe()
				if err != nil && err != http.ErrServerClosed {
					serverErr <- err
					return
				}
				serverErr <- nil
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-serverErr:
				return err
			case <-ctx.Done():
				log.Info().Msg("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
}
