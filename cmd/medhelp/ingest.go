package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sandevgo/medhelp/internal/config"
	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/internal/service/knowledge"
	"github.com/spf13/cobra"
)

var (
	ingestTitle    string
	ingestCategory string
	ingestURL      string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Add trusted sources to the knowledge base",
}

var ingestURLCmd = &cobra.Command{
	Use:          "url <url>",
	Short:        "Fetch a page and ingest its text",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd, func(kb *Knowledge) (int, error) {
			return kb.Pipeline.IngestURL(cmd.Context(), args[0], ingestTitle, ingestCategory)
		})
	},
}

var ingestTextCmd = &cobra.Command{
	Use:          "text <file>",
	Short:        "Ingest a local text file ('-' reads stdin)",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		title := ingestTitle
		if title == "" && args[0] != "-" {
			title = args[0]
		}

		return runIngest(cmd, func(kb *Knowledge) (int, error) {
			return kb.Pipeline.Ingest(cmd.Context(), core.Source{
				Text:     string(data),
				Title:    title,
				URL:      ingestURL,
				Category: ingestCategory,
			})
		})
	},
}

var ingestCatalogCmd = &cobra.Command{
	Use:          "catalog [path]",
	Short:        "Ingest every source listed in a YAML catalog (defaults to the built-in list)",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, os.Stderr)
		defer flushLog()

		appCfg := loadEnv(ctx)
		path := appCfg.GetCatalogPath()
		if len(args) == 1 {
			path = args[0]
		}

		catalog, err := knowledge.LoadCatalog(path)
		if err != nil {
			return err
		}

		kb := NewKnowledge(ctx, appCfg, config.NewLLMConfig(ctx))
		reports := kb.Pipeline.IngestCatalog(ctx, catalog)

		out := cmd.OutOrStdout()
		var failed int
		for _, r := range reports {
			name := r.Source.Title
			if name == "" {
				name = r.Source.URL
			}
			if r.Err != nil {
				failed++
				fmt.Fprintf(out, "✗ %s: %v\n", name, r.Err)
				continue
			}
			fmt.Fprintf(out, "✓ %s: %d chunks\n", name, r.Chunks)
		}
		fmt.Fprintf(out, "\nindex now holds %d chunks\n", kb.Index.Len())

		if failed == len(reports) && failed > 0 {
			return errors.New("no catalog source could be ingested")
		}
		return nil
	},
}

// runIngest sets up logging and the knowledge base, runs fn and reports the result.
func runIngest(cmd *cobra.Command, fn func(kb *Knowledge) (int, error)) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var flushLog func()
	ctx, flushLog = setupLogger(ctx, os.Stderr)
	defer flushLog()
	cmd.SetContext(ctx)

	appCfg := loadEnv(ctx)
	kb := NewKnowledge(ctx, appCfg, config.NewLLMConfig(ctx))

	n, err := fn(kb)
	var pe *core.PersistenceError
	switch {
	case errors.As(err, &pe):
		fmt.Fprintf(cmd.OutOrStdout(), "added %d chunks, but the snapshot was not saved: %v\n", n, pe)
		return err
	case err != nil:
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "added %d chunks, index now holds %d\n", n, kb.Index.Len())
	return nil
}

func init() {
	for _, c := range []*cobra.Command{ingestURLCmd, ingestTextCmd} {
		c.Flags().StringVar(&ingestTitle, "title", "", "source title")
		c.Flags().StringVar(&ingestCategory, "category", "", "source category (default general)")
	}
	ingestTextCmd.Flags().StringVar(&ingestURL, "url", "", "link stored with the text")

	ingestCmd.AddCommand(ingestURLCmd, ingestTextCmd, ingestCatalogCmd)
	rootCmd.AddCommand(ingestCmd)
}
