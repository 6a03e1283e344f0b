package core

import "context"

type ConversationRepository interface {
	Create(ctx context.Context, conv Conversation) error
	// Get returns ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*Conversation, error)
	AppendMessage(ctx context.Context, conversationID string, msg ConversationMessage) error
	// AppendRound stores one user message and its bot reply atomically,
	// creating the conversation first when isNew is set. On error nothing
	// of the round is stored.
	AppendRound(ctx context.Context, conv Conversation, isNew bool, user, bot ConversationMessage) error
	// List returns conversations ordered by most recent activity first.
	List(ctx context.Context, limit int) ([]Conversation, error)
}
