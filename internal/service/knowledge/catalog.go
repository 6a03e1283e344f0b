package knowledge

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/pkg/log"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// DefaultCatalog returns a copy of the built-in catalog.
func DefaultCatalog() []byte {
	return append([]byte(nil), defaultCatalog...)
}

// Catalog is a list of trusted sources ingested into an empty index.
// Entries with inline text are ingested as is; the rest are fetched by URL.
type Catalog struct {
	Sources []core.Source `yaml:"sources"`
}

// IngestReport is the outcome for one catalog entry.
type IngestReport struct {
	Source core.Source
	Chunks int
	Err    error
}

// LoadCatalog reads a YAML catalog. A missing file falls back to the built-in list.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		data = defaultCatalog
	} else if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, s := range c.Sources {
		if s.URL == "" && s.Text == "" {
			return nil, fmt.Errorf("catalog entry %d: url or text is required", i)
		}
	}
	return &c, nil
}

// IngestCatalog ingests every source in order. One failure never stops the rest.
func (p *Pipeline) IngestCatalog(ctx context.Context, c *Catalog) []IngestReport {
	logger := log.FromCtx(ctx)
	reports := make([]IngestReport, 0, len(c.Sources))

	for _, src := range c.Sources {
		if ctx.Err() != nil {
			reports = append(reports, IngestReport{Source: src, Err: ctx.Err()})
			continue
		}

		var n int
		var err error
		if src.Text != "" {
			n, err = p.Ingest(ctx, src)
		} else {
			n, err = p.IngestURL(ctx, src.URL, src.Title, src.Category)
		}

		if err != nil {
			logger.Warn().Err(err).Str("url", src.URL).Msg("catalog source failed")
		}
		reports = append(reports, IngestReport{Source: src, Chunks: n, Err: err})
	}
	return reports
}
