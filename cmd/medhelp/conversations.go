package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

var conversationsCmd = &cobra.Command{
	Use:          "conversations [id]",
	Short:        "List stored triage conversations or print one",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context(), os.Stderr)
		defer flushLog()

		appCfg := loadEnv(ctx)
		db, err := initStorage(ctx, appCfg)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := sqlite.NewConversationsRepo(db)
		out := cmd.OutOrStdout()

		if len(args) == 1 {
			conv, err := repo.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("conversation %s: %w", args[0], err)
			}
			printConversation(cmd, conv)
			return nil
		}

		convs, err := repo.List(ctx, appCfg.HistoryListMax)
		if err != nil {
			return err
		}
		if len(convs) == 0 {
			fmt.Fprintln(out, "no conversations yet")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUPDATED\tTITLE")
		for _, c := range convs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.UpdatedAt.Local().Format("2006-01-02 15:04"), c.Title)
		}
		return w.Flush()
	},
}

func printConversation(cmd *cobra.Command, conv *core.Conversation) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n%s\n\n", conv.Title, strings.Repeat("=", len([]rune(conv.Title))))

	for _, m := range conv.Messages {
		who := "Patient"
		if m.Sender == core.SenderBot {
			who = "MedHelp"
		}
		fmt.Fprintf(out, "[%s] %s:\n%s\n", m.Timestamp.Local().Format("15:04:05"), who, m.Text)
		if len(m.RetrievedSources) > 0 {
			fmt.Fprintf(out, "  sources: %s\n", strings.Join(m.RetrievedSources, ", "))
		}
		fmt.Fprintln(out)
	}

	status := "in progress"
	if conv.Complete() {
		status = "complete"
	}
	fmt.Fprintf(out, "status: %s, questions asked: %d\n", status, conv.BotTurns())
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
}
