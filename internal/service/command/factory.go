package command

import (
	"github.com/sandevgo/medhelp/internal/core"
)

func NewCommands(
	ingester Ingester,
	index IndexInfo,
	sessions SessionResetter,
	history ConversationLister,
) []core.Command {
	return []core.Command{
		NewIngestCommand(ingester),
		NewInfoCommand(index),
		NewNewCommand(sessions),
		NewHistoryCommand(history),
	}
}
