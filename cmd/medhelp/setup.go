package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/medhelp/internal/config"
	"github.com/sandevgo/medhelp/internal/index"
	"github.com/sandevgo/medhelp/internal/providers/llm"
	"github.com/sandevgo/medhelp/internal/providers/rag"
	"github.com/sandevgo/medhelp/internal/providers/tools"
	"github.com/sandevgo/medhelp/internal/service/command"
	"github.com/sandevgo/medhelp/internal/service/knowledge"
	"github.com/sandevgo/medhelp/internal/service/state"
	"github.com/sandevgo/medhelp/internal/service/triage"
	"github.com/sandevgo/medhelp/internal/storage/sqlite"
	"github.com/sandevgo/medhelp/pkg/log"
	"github.com/sandevgo/medhelp/pkg/srv"
)

// Knowledge is the retrieval side: index, embedder, retriever and ingestion.
type Knowledge struct {
	Index     *index.Index
	Retriever *knowledge.Retriever
	Pipeline  *knowledge.Pipeline
}

// Triage adds the dialogue side on top of Knowledge.
type Triage struct {
	*Knowledge
	Controller *triage.Controller
	Router     *command.Router
	Sessions   *state.Sessions
}

// loadEnv reads <runtime>/.env and returns the parsed app config.
func loadEnv(ctx context.Context) *config.AppConfig {
	logger := log.FromCtx(ctx)
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	appCfg := config.NewAppConfig(ctx)
	if err := os.MkdirAll(appCfg.GetRuntimePath(), 0755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create runtime directory")
	}
	return appCfg
}

// NewKnowledge builds the index and loads its snapshot. A corrupt snapshot
// is logged and the index starts empty.
func NewKnowledge(ctx context.Context, appCfg *config.AppConfig, llmCfg *config.LLMConfig) *Knowledge {
	logger := log.FromCtx(ctx)

	ragCfg := config.NewRAGConfig(ctx)

	encoder, err := llm.NewEmbeddingProvider(ctx, llmCfg, ragCfg.Embedding)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize embedding provider")
	}
	embedder := rag.NewEmbedderFromConfig(ragCfg, encoder)

	idx := openIndex(ctx, appCfg, ragCfg)

	return &Knowledge{
		Index:     idx,
		Retriever: knowledge.NewRetriever(idx, embedder, ragCfg.SimilarityThreshold),
		Pipeline:  knowledge.NewPipeline(idx, embedder, tools.NewFetch(), rag.ChunkerConfigFrom(ragCfg)),
	}
}

// NewTriage wires the dialogue controller and returns the services that
// must be shut down with it.
func NewTriage(ctx context.Context, appCfg *config.AppConfig) (*Triage, []srv.Service) {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	llmCfg := config.NewLLMConfig(ctx)
	kb := NewKnowledge(ctx, appCfg, llmCfg)

	db, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	aiProvider, err := llm.NewProvider(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	controller := triage.NewController(
		appCfg,
		aiProvider,
		kb.Retriever,
		sqlite.NewConversationsRepo(db),
		triage.WithTemperature(llmCfg.Temperature),
	)

	sessions := state.NewSessions()
	router := command.New(command.NewCommands(kb.Pipeline, kb.Index, sessions, controller))

	return &Triage{
		Knowledge:  kb,
		Controller: controller,
		Router:     router,
		Sessions:   sessions,
	}, services
}

func openIndex(ctx context.Context, appCfg *config.AppConfig, ragCfg *config.RAGConfig) *index.Index {
	idx := index.New(
		index.WithAccelerated(ragCfg.Accelerated),
		index.WithSnapshotter(sqlite.NewSnapshotStore(appCfg.GetIndexPath())),
	)
	if _, err := idx.Load(ctx); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("path", appCfg.GetIndexPath()).Msg("index snapshot unusable, starting empty")
	}
	return idx
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, error) {
	return sqlite.NewDB(ctx, cfg.GetDatabasePath())
}

// seedIndex ingests the trusted catalog when the index is empty.
func seedIndex(ctx context.Context, appCfg *config.AppConfig, kb *Knowledge) {
	logger := log.FromCtx(ctx)
	if kb.Index.Len() > 0 {
		return
	}

	catalog, err := knowledge.LoadCatalog(appCfg.GetCatalogPath())
	if err != nil {
		logger.Error().Err(err).Msg("failed to load source catalog")
		return
	}

	logger.Info().Int("sources", len(catalog.Sources)).Msg("index is empty, ingesting trusted catalog")
	reports := kb.Pipeline.IngestCatalog(ctx, catalog)

	var failed int
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info().Int("chunks", kb.Index.Len()).Int("failed", failed).Msg("catalog ingestion finished")
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
