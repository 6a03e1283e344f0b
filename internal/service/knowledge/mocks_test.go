package knowledge

import (
	"context"
	"errors"

	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/internal/providers/rag"
	"github.com/sandevgo/medhelp/internal/providers/tools"
)

type mockQueryEncoder struct {
	encodeQueryFunc func(ctx context.Context, text string) ([]float32, error)
	calls           []string
}

func (m *mockQueryEncoder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	m.calls = append(m.calls, text)
	if m.encodeQueryFunc != nil {
		return m.encodeQueryFunc(ctx, text)
	}
	return []float32{1, 0}, nil
}

type mockPassageEncoder struct {
	encodePassagesFunc func(ctx context.Context, texts []string) ([]rag.Embedding, error)
	calls              [][]string
}

func (m *mockPassageEncoder) EncodePassages(ctx context.Context, texts []string) ([]rag.Embedding, error) {
	m.calls = append(m.calls, texts)
	if m.encodePassagesFunc != nil {
		return m.encodePassagesFunc(ctx, texts)
	}
	out := make([]rag.Embedding, len(texts))
	for i := range texts {
		out[i] = rag.Embedding{Index: i, Vector: []float32{float32(i + 1), 1}}
	}
	return out, nil
}

type mockStore struct {
	appendFunc func(records []core.IndexRecord) error
	saveFunc   func(ctx context.Context) error
	records    []core.IndexRecord
	saves      int
}

func (m *mockStore) Append(records []core.IndexRecord) error {
	if m.appendFunc != nil {
		if err := m.appendFunc(records); err != nil {
			return err
		}
	}
	m.records = append(m.records, records...)
	return nil
}

func (m *mockStore) Save(ctx context.Context) error {
	m.saves++
	if m.saveFunc != nil {
		return m.saveFunc(ctx)
	}
	return nil
}

type mockFetcher struct {
	pages map[string]*tools.Page
	calls []string
}

func (m *mockFetcher) FetchPage(ctx context.Context, url string) (*tools.Page, error) {
	m.calls = append(m.calls, url)
	if p, ok := m.pages[url]; ok {
		return p, nil
	}
	return nil, errors.New("HTTP 404: 404 Not Found")
}
