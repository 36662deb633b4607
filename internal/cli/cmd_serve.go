package cli

import (
	"context"
	"errors"
	"io/fs"
	"os/signal"
	"syscall"

	"github.com/example/lemmabank/internal/config"
	"github.com/example/lemmabank/internal/notify"
	"github.com/example/lemmabank/internal/scheduler"
	"github.com/example/lemmabank/internal/server"
	"github.com/example/lemmabank/internal/vite"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if cfg.AutoMigrate {
				if err := migrateUp(cmd, db); err != nil {
					return err
				}
			}

			manifest, err := loadManifest(cfg)
			if err != nil {
				return err
			}

			if cfg.SchedulerEnabled {
				notifier, err := notify.New(cfg.TelegramBotToken)
				if err != nil {
					return err
				}
				sched := scheduler.New(db, notifier, scheduler.Config{
					StatsInterval: cfg.StatsRefreshInterval,
					DigestHour:    cfg.DigestHour,
				})
				if err := sched.Start(); err != nil {
					return err
				}
				defer sched.Stop()

				if tg, ok := notifier.(*notify.TelegramNotifier); ok {
					go tg.Commands(db).Run(ctx)
				}
			}

			err = server.New(cfg, db, manifest).ListenAndServe(ctx)
			if err == nil || errors.Is(err, context.Canceled) {
				log.Info().Msg("server stopped")
				return nil
			}
			return err
		},
	}
}

// loadManifest returns the Vite manifest, the dev server when one is
// configured, or nil when the frontend has not been built.
func loadManifest(cfg *config.Config) (*vite.Manifest, error) {
	if cfg.ViteDevServer != "" {
		return vite.Dev(cfg.ViteDevServer), nil
	}
	manifest, err := vite.Load(cfg.ViteManifest, cfg.ViteBase)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", cfg.ViteManifest).Msg("vite manifest not found, serving without frontend assets")
		return nil, nil
	}
	return manifest, err
}
