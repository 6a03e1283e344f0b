package main

import (
	"fmt"
	"os"

	"github.com/sandevgo/medhelp/internal/config"
	"github.com/sandevgo/medhelp/pkg/env"
	"github.com/spf13/cobra"
)

var secretKeys = []string{
	"OPENAI_API_KEY",
	"ANTHROPIC_API_KEY",
	"OPENROUTER_API_KEY",
	"OLLAMA_API_KEY",
	"CUSTOM_OPENAI_API_KEY",
	"TELEGRAM_TOKEN",
}

var configCmd = &cobra.Command{
	Use:          "config",
	Short:        "Print the effective configuration as env lines (secrets masked)",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), os.Stderr)
		defer flushLog()

		appCfg := loadEnv(ctx)
		sections := []any{appCfg, config.NewLLMConfig(ctx), config.NewRAGConfig(ctx)}
		if appCfg.EnableTelegram {
			sections = append(sections, config.NewTelegramConfig(ctx))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# runtime: %s\n", appCfg.GetRuntimePath())
		for _, s := range sections {
			lines, err := env.MarshalEnv(s, secretKeys...)
			if err != nil {
				return err
			}
			fmt.Fprint(out, lines)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
