package core

import "context"

// CmdRouter dispatches slash commands typed into a chat surface.
// sessionID is the surface-specific chat key (telegram chat id, cli session).
type CmdRouter interface {
	Execute(ctx context.Context, sessionID, input string) (string, bool)
	ListCommands() []Command
}

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, sessionID string, args []string) (string, error)
}
