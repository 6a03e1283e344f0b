package main

import (
	"os"

	"github.com/sandevgo/medhelp/internal/config"
	"github.com/sandevgo/medhelp/internal/service/installer"
	"github.com/sandevgo/medhelp/pkg/log"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:          "install",
	Short:        "Create the runtime directory and its configuration",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), os.Stderr)
		defer flushLog()

		logger := log.FromCtx(ctx)

		if _, err := installer.RunWizard(); err != nil {
			return err
		}

		runtimePath := config.GetRuntimePath()
		if err := initEnv(ctx, runtimePath); err != nil {
			logger.Warn().Err(err).Msg("failed to load the new .env file")
		}

		logger.Info().Str("path", runtimePath).Msg("runtime directory initialized")
		logger.Info().Msg("installation complete, run 'medhelp chat' or 'medhelp serve'")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
