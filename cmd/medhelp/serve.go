package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/medhelp/internal/config"
	"github.com/sandevgo/medhelp/internal/transport/telegram"
	"github.com/sandevgo/medhelp/pkg/log"
	"github.com/sandevgo/medhelp/pkg/srv"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the triage bot",
	Long:  `Loads the index, seeds it from the trusted catalog when empty and starts the enabled transports (Telegram).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, nil)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Msg("starting medhelp")

		appCfg := loadEnv(ctx)
		app, services := NewTriage(ctx, appCfg)
		services = append(services, srv.NewFunc(func(ctx context.Context) error {
			seedIndex(log.WithComponent(ctx, "catalog"), appCfg, app.Knowledge)
			return nil
		}, nil))

		if appCfg.EnableTelegram {
			tgCfg := config.NewTelegramConfig(ctx)
			bot, err := telegram.NewBot(log.WithComponent(ctx, "telegram"), tgCfg, app.Controller, app.Router, app.Sessions)
			if err != nil {
				logger.Fatal().Err(err).Msg("failed to initialize telegram")
			}
			services = append(services, bot)
		} else {
			logger.Warn().Msg("no transport enabled, set MEDHELP_ENABLE_TELEGRAM=true or use 'medhelp chat'")
		}

		srv.StartServices(ctx, services)
		srv.ShutdownServices(ctx, services)

		logger.Info().Msg("medhelp has been shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
