package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/pkg/log"
)

const (
	defaultTopK = 3
	maxTopK     = 20
)

type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) []core.ScoredRecord
}

type Ingester interface {
	Ingest(ctx context.Context, src core.Source) (int, error)
	IngestURL(ctx context.Context, url, title, category string) (int, error)
}

type IndexInfo interface {
	Len() int
	Dimension() int
	Accelerated() bool
}

// Server exposes the knowledge base to MCP clients over stdio.
type Server struct {
	mcp       *server.MCPServer
	retriever Retriever
	ingester  Ingester
	index     IndexInfo
	in        io.Reader
	out       io.Writer
}

func NewServer(retriever Retriever, ingester Ingester, index IndexInfo) *Server {
	s := &Server{
		retriever: retriever,
		ingester:  ingester,
		index:     index,
		in:        os.Stdin,
		out:       os.Stdout,
	}

	s.mcp = server.NewMCPServer(
		core.AppName,
		core.AppVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcpproto.NewTool("retrieve_evidence",
		mcpproto.WithDescription("Search the trusted medical knowledge base and return the most similar passages with their sources."),
		mcpproto.WithString("query", mcpproto.Required(), mcpproto.Description("Symptoms or question in plain language")),
		mcpproto.WithNumber("top_k", mcpproto.Description("Maximum number of passages (default 3)")),
	), s.handleRetrieve)

	s.mcp.AddTool(mcpproto.NewTool("index_info",
		mcpproto.WithDescription("Report knowledge base size, vector dimension and search backend."),
	), s.handleInfo)

	s.mcp.AddTool(mcpproto.NewTool("ingest_source",
		mcpproto.WithDescription("Add a trusted source to the knowledge base, either by URL or as raw text."),
		mcpproto.WithString("url", mcpproto.Description("Page to fetch; also stored as the source link")),
		mcpproto.WithString("text", mcpproto.Description("Raw text to ingest instead of fetching the URL")),
		mcpproto.WithString("title", mcpproto.Description("Source title")),
		mcpproto.WithString("category", mcpproto.Description("Category such as neurology or emergency")),
	), s.handleIngest)
}

// Start serves until ctx is cancelled or the client closes stdin.
func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting mcp stdio server")
	err := server.NewStdioServer(s.mcp).Listen(ctx, s.in, s.out)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}

type evidence struct {
	Title     string  `json:"title"`
	SourceURL string  `json:"source_url,omitempty"`
	Category  string  `json:"category"`
	Score     float32 `json:"score"`
	Text      string  `json:"text"`
}

func (s *Server) handleRetrieve(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}

	topK := req.GetInt("top_k", defaultTopK)
	if topK <= 0 {
		topK = defaultTopK
	}
	topK = min(topK, maxTopK)

	records := s.retriever.Retrieve(ctx, query, topK)
	out := make([]evidence, 0, len(records))
	for _, r := range records {
		out = append(out, evidence{
			Title:     r.Title,
			SourceURL: r.SourceURL,
			Category:  r.Category,
			Score:     r.Score,
			Text:      r.Text,
		})
	}
	return jsonResult(out)
}

func (s *Server) handleInfo(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	return jsonResult(map[string]any{
		"num_chunks":  s.index.Len(),
		"dimension":   s.index.Dimension(),
		"accelerated": s.index.Accelerated(),
	})
}

func (s *Server) handleIngest(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	url := req.GetString("url", "")
	text := req.GetString("text", "")
	title := req.GetString("title", "")
	category := req.GetString("category", "")

	var n int
	var err error
	switch {
	case text != "":
		n, err = s.ingester.Ingest(ctx, core.Source{Text: text, Title: title, URL: url, Category: category})
	case url != "":
		n, err = s.ingester.IngestURL(ctx, url, title, category)
	default:
		return mcpproto.NewToolResultError("either url or text is required"), nil
	}

	var pe *core.PersistenceError
	if err != nil && !errors.As(err, &pe) {
		log.FromCtx(ctx).Warn().Err(err).Str("url", url).Msg("mcp ingest failed")
		return mcpproto.NewToolResultError(err.Error()), nil
	}

	res := map[string]any{"chunks": n}
	if pe != nil {
		res["warning"] = pe.Error()
	}
	return jsonResult(res)
}

func jsonResult(v any) (*mcpproto.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcpproto.NewToolResultText(string(data)), nil
}
