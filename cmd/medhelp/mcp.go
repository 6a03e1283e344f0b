package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sandevgo/medhelp/internal/config"
	"github.com/sandevgo/medhelp/internal/transport/mcp"
	"github.com/sandevgo/medhelp/pkg/log"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:          "mcp",
	Short:        "Serve the knowledge base to MCP clients over stdio",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// stdout carries the protocol.
		var flushLog func()
		ctx, flushLog = setupLogger(ctx, os.Stderr)
		defer flushLog()

		appCfg := loadEnv(ctx)
		kb := NewKnowledge(ctx, appCfg, config.NewLLMConfig(ctx))

		return mcp.NewServer(kb.Retriever, kb.Pipeline, kb.Index).Start(log.WithComponent(ctx, "mcp"))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
