package main

import (
	"fmt"
	"os"

	"github.com/sandevgo/medhelp/internal/config"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:          "info",
	Short:        "Show knowledge base status",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), os.Stderr)
		defer flushLog()

		appCfg := loadEnv(ctx)
		idx := openIndex(ctx, appCfg, config.NewRAGConfig(ctx))

		backend := "cosine"
		if idx.Accelerated() {
			backend = "accelerated (blas)"
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Chunks:    %d\n", idx.Len())
		fmt.Fprintf(out, "Dimension: %d\n", idx.Dimension())
		fmt.Fprintf(out, "Backend:   %s\n", backend)
		fmt.Fprintf(out, "Snapshot:  %s\n", appCfg.GetIndexPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
