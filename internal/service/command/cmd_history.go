package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/medhelp/internal/core"
)

type ConversationLister interface {
	Conversations(ctx context.Context) ([]core.Conversation, error)
}

type HistoryCommand struct {
	history   ConversationLister
	formatter *ResponseFormatter
}

func NewHistoryCommand(history ConversationLister) *HistoryCommand {
	return &HistoryCommand{
		history:   history,
		formatter: NewResponseFormatter(),
	}
}

func (c *HistoryCommand) Name() string {
	return "history"
}

func (c *HistoryCommand) Description() string {
	return "List recent triage conversations"
}

func (c *HistoryCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	convs, err := c.history.Conversations(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list conversations: %w", err)
	}
	if len(convs) == 0 {
		return c.formatter.Info("No conversations yet"), nil
	}

	items := make([]string, 0, len(convs))
	for _, conv := range convs {
		items = append(items, fmt.Sprintf("`%s` %s (%s)", conv.ID[:min(8, len(conv.ID))], conv.Title, conv.UpdatedAt.Format("2006-01-02 15:04")))
	}

	return c.formatter.Combine(
		c.formatter.Info("Recent Conversations"),
		c.formatter.List(items),
	), nil
}
