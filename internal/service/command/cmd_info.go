package command

import (
	"context"
	"strconv"
)

type IndexInfo interface {
	Len() int
	Dimension() int
	Accelerated() bool
}

type InfoCommand struct {
	index     IndexInfo
	formatter *ResponseFormatter
}

func NewInfoCommand(index IndexInfo) *InfoCommand {
	return &InfoCommand{
		index:     index,
		formatter: NewResponseFormatter(),
	}
}

func (c *InfoCommand) Name() string {
	return "info"
}

func (c *InfoCommand) Description() string {
	return "Show knowledge base status"
}

func (c *InfoCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	backend := "cosine"
	if c.index.Accelerated() {
		backend = "accelerated"
	}

	return c.formatter.Combine(
		c.formatter.Info("Knowledge Base"),
		c.formatter.Label("Chunks", strconv.Itoa(c.index.Len())),
		c.formatter.Label("Dimension", strconv.Itoa(c.index.Dimension())),
		c.formatter.Label("Backend", backend),
	), nil
}
