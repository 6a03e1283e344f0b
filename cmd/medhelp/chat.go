package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sandevgo/medhelp/internal/config"
	"github.com/sandevgo/medhelp/internal/transport/cli"
	"github.com/sandevgo/medhelp/pkg/srv"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:           "chat",
	Short:         "Start an interactive triage in the terminal",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		// The terminal belongs to the chat; logs go to a file.
		logPath := filepath.Join(config.GetRuntimePath(), "chat.log")
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return err
		}
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer logFile.Close()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, logFile)
		defer flushLog()

		appCfg := loadEnv(ctx)
		app, services := NewTriage(ctx, appCfg)
		defer srv.StopServices(ctx, services)

		if app.Index.Len() == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "The knowledge base is empty. Run 'medhelp ingest catalog' for grounded answers.")
		}

		chat := cli.NewChat(app.Controller, app.Router, app.Sessions)
		return chat.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
