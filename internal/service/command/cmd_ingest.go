package command

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sandevgo/medhelp/internal/core"
)

type Ingester interface {
	IngestURL(ctx context.Context, url, title, category string) (int, error)
}

type IngestCommand struct {
	ingester  Ingester
	formatter *ResponseFormatter
}

func NewIngestCommand(ingester Ingester) *IngestCommand {
	return &IngestCommand{
		ingester:  ingester,
		formatter: NewResponseFormatter(),
	}
}

func (c *IngestCommand) Name() string {
	return "ingest"
}

func (c *IngestCommand) Description() string {
	return "Add a trusted medical page to the knowledge base"
}

func (c *IngestCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	if len(args) == 0 {
		return c.formatter.Combine(
			c.formatter.Info("Ingest a source"),
			c.formatter.Usage("/ingest <url> [category]"),
			c.formatter.Examples([]string{
				"/ingest https://www.nhs.uk/conditions/migraine/",
				"/ingest https://medlineplus.gov/asthma.html respiratory",
			}),
		), nil
	}

	target := args[0]
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid url: %s", target)
	}

	category := ""
	if len(args) > 1 {
		category = strings.Join(args[1:], " ")
	}

	n, err := c.ingester.IngestURL(ctx, target, "", category)
	var pe *core.PersistenceError
	switch {
	case errors.Is(err, core.ErrEmptyContent):
		return c.formatter.Combine(
			c.formatter.Info("Nothing ingested"),
			c.formatter.Label("Source", target),
			c.formatter.Tip("the page had no readable text or every embedding batch failed"),
		), nil
	case errors.As(err, &pe):
		return c.formatter.Combine(
			c.formatter.Success(fmt.Sprintf("Added %d chunks", n)),
			c.formatter.Tip("the index snapshot could not be written, the chunks are lost on restart"),
		), nil
	case err != nil:
		return "", err
	}

	return c.formatter.Combine(
		c.formatter.Success(fmt.Sprintf("Added %d chunks", n)),
		c.formatter.Label("Source", target),
	), nil
}
