package rag

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	return tk, tkErr
}

// truncateTokens cuts text to at most maxTokens cl100k tokens.
// The second result reports whether anything was cut.
func truncateTokens(enc *tiktoken.Tiktoken, text string, maxTokens int) (string, bool) {
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, false
	}
	return enc.Decode(tokens[:maxTokens]), true
}
