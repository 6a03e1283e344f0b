package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandevgo/medhelp/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompatible_Chat(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, core.AppUserAgent, r.Header.Get("User-Agent"))

		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"next_question\":\"How long?\"}"}}]}`))
	}))
	defer server.Close()

	p := NewCustomOpenAI(server.URL, "sk-test", "gpt-4o")
	msg, err := p.Chat(context.Background(), []core.Message{
		{Role: core.RoleSystem, Content: "triage"},
		{Role: core.RoleUser, Content: "headache"},
	}, core.ChatOptions{JSONMode: true, Temperature: 0.3})

	require.NoError(t, err)
	assert.Equal(t, core.RoleAssistant, msg.Role)
	assert.Contains(t, msg.Content, "How long?")

	assert.Equal(t, "gpt-4o", got["model"])
	assert.Equal(t, 0.3, got["temperature"])
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
	assert.Len(t, got["messages"], 2)
}

func TestOpenAICompatible_ChatOmitsUnsetOptions(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer server.Close()

	_, err := NewCustomOpenAI(server.URL, "", "m").Chat(context.Background(), nil, core.ChatOptions{})
	require.NoError(t, err)

	assert.NotContains(t, got, "temperature")
	assert.NotContains(t, got, "response_format")
}

func TestOpenAICompatible_ChatErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantTemporary bool
		wantStatus    bool
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":"slow down"}`, wantTemporary: true, wantStatus: true},
		{name: "server error", status: http.StatusBadGateway, body: `bad gateway`, wantTemporary: true, wantStatus: true},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"invalid"}`, wantStatus: true},
		{name: "empty choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "malformed body", status: http.StatusOK, body: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewCustomOpenAI(server.URL, "k", "m").Chat(context.Background(), nil, core.ChatOptions{})
			require.Error(t, err)

			var se *StatusError
			assert.Equal(t, tt.wantStatus, errors.As(err, &se))
			if tt.wantStatus {
				assert.Equal(t, tt.status, se.Code)
				assert.Equal(t, tt.wantTemporary, se.Temporary())
			}
		})
	}
}

func TestOpenAICompatible_EmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)
		assert.Equal(t, []string{"a", "b"}, req.Input)

		// Out of order on purpose.
		w.Write([]byte(`{"data":[{"index":1,"embedding":[0.5,0.25]},{"index":0,"embedding":[1,0]}]}`))
	}))
	defer server.Close()

	p := NewCustomOpenAI(server.URL, "k", "text-embedding-3-small")
	got, err := p.EmbedBatch(context.Background(), []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0.5, 0.25}}, got)
}

func TestOpenAICompatible_EmbedBatchCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"index":0,"embedding":[1]}]}`))
	}))
	defer server.Close()

	_, err := NewCustomOpenAI(server.URL, "k", "m").EmbedBatch(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}

func TestOpenAICompatible_EmbedBatchEmpty(t *testing.T) {
	p := NewCustomOpenAI("http://127.0.0.1:1", "k", "m")
	got, err := p.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAnthropic_ChatSystemAndJSONMode(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("x-api-key"))
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"content":[{"type":"text","text":"{\"a\":"},{"type":"text","text":"1}"}]}`))
	}))
	defer server.Close()

	a := NewAnthropic("key", "claude")
	a.baseURL = server.URL

	msg, err := a.Chat(context.Background(), []core.Message{
		{Role: core.RoleSystem, Content: "You triage."},
		{Role: core.RoleUser, Content: "cough"},
	}, core.ChatOptions{JSONMode: true})

	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, msg.Content)
	assert.Equal(t, "You triage.\n\n"+jsonModeInstruction, got["system"])
	assert.Len(t, got["messages"], 1)
}

func TestNewEmbeddingProvider(t *testing.T) {
	cfg := testLLMConfig()

	_, err := NewEmbeddingProvider(context.Background(), cfg, embeddingConfig("openai"))
	assert.NoError(t, err)

	_, err = NewEmbeddingProvider(context.Background(), cfg, embeddingConfig("anthropic"))
	assert.Error(t, err)

	_, err = NewEmbeddingProvider(context.Background(), cfg, embeddingConfig("nope"))
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	cfg := testLLMConfig()
	for _, name := range []string{"openai", "anthropic", "openrouter", "ollama", "custom"} {
		cfg.Provider = name
		p, err := NewProvider(context.Background(), cfg)
		assert.NoError(t, err, name)
		assert.NotNil(t, p, name)
	}

	cfg.Provider = "unknown"
	_, err := NewProvider(context.Background(), cfg)
	assert.Error(t, err)
}
