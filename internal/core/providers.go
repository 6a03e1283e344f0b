package core

import "context"

type AIProvider interface {
	Chat(ctx context.Context, history []Message, opts ChatOptions) (Message, error)
}

// BatchEncoder embeds a batch of texts in one call.
// The result must have one vector per input, in input order.
type BatchEncoder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
