package command

import (
	"context"
)

type SessionResetter interface {
	Reset(key string)
}

type NewCommand struct {
	sessions  SessionResetter
	formatter *ResponseFormatter
}

func NewNewCommand(sessions SessionResetter) *NewCommand {
	return &NewCommand{
		sessions:  sessions,
		formatter: NewResponseFormatter(),
	}
}

func (c *NewCommand) Name() string {
	return "new"
}

func (c *NewCommand) Description() string {
	return "Start a new triage conversation"
}

func (c *NewCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	c.sessions.Reset(sessionID)
	return c.formatter.Success("New conversation started. Describe your symptoms."), nil
}
