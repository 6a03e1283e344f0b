package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sandevgo/medhelp/internal/providers/rag"
	"github.com/sandevgo/medhelp/internal/providers/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog_Default(t *testing.T) {
	c, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, c.Sources)
	for _, s := range c.Sources {
		assert.NotEmpty(t, s.Title)
		assert.True(t, s.URL != "" || s.Text != "")
	}
}

func TestLoadCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sources:
  - title: Asthma
    url: https://example.org/asthma
    category: respiratory
`), 0644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, c.Sources, 1)
	assert.Equal(t, "Asthma", c.Sources[0].Title)
	assert.Equal(t, "respiratory", c.Sources[0].Category)
}

func TestParseCatalog_Invalid(t *testing.T) {
	_, err := ParseCatalog([]byte("sources: [unclosed"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("sources:\n  - title: nothing to ingest\n"))
	assert.ErrorContains(t, err, "url or text is required")
}

func TestPipeline_IngestCatalogContinuesAfterFailure(t *testing.T) {
	fetcher := &mockFetcher{pages: map[string]*tools.Page{
		"https://ok": {Title: "OK", Text: "useful medical text"},
	}}
	store := &mockStore{}
	p := NewPipeline(store, &mockPassageEncoder{}, fetcher, rag.DefaultChunkerConfig())

	c, err := ParseCatalog([]byte(`
sources:
  - title: Broken
    url: https://broken
  - title: Fine
    url: https://ok
  - title: Inline
    text: inline guidance
    category: emergency
`))
	require.NoError(t, err)

	reports := p.IngestCatalog(context.Background(), c)

	require.Len(t, reports, 3)
	assert.Error(t, reports[0].Err)
	assert.NoError(t, reports[1].Err)
	assert.Equal(t, 1, reports[1].Chunks)
	assert.NoError(t, reports[2].Err)
	assert.Equal(t, 1, reports[2].Chunks)
	assert.Equal(t, []string{"https://broken", "https://ok"}, fetcher.calls)
	assert.Len(t, store.records, 2)
}
