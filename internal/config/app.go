package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/medhelp/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"MEDHELP_RUNTIME_PATH" envDefault:".medhelp"`

	// Transport flags
	EnableTelegram bool `env:"MEDHELP_ENABLE_TELEGRAM" envDefault:"false"`

	// Dialogue bounds
	MaxQuestions   int `env:"MEDHELP_MAX_QUESTIONS" envDefault:"5"`
	RetrievalTopK  int `env:"MEDHELP_RETRIEVAL_TOP_K" envDefault:"3"`
	HistoryListMax int `env:"MEDHELP_HISTORY_LIST_MAX" envDefault:"20"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "medhelp.db")
}

func (c AppConfig) GetIndexPath() string {
	return filepath.Join(c.RuntimePath, "index.db")
}

func (c AppConfig) GetCatalogPath() string {
	return filepath.Join(c.RuntimePath, "catalog.yaml")
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}
