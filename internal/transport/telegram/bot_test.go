package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/internal/service/state"
	"github.com/sandevgo/medhelp/internal/service/triage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTriage opens a new conversation for every empty id it sees.
type fakeTriage struct {
	mu      sync.Mutex
	created int
	ids     []string
}

func (f *fakeTriage) Step(ctx context.Context, conversationID, text string) (*triage.StepResult, error) {
	f.mu.Lock()
	if conversationID == "" {
		f.created++
		conversationID = "conv-" + strconv.Itoa(f.created)
	}
	f.ids = append(f.ids, conversationID)
	f.mu.Unlock()

	// Widen the window between reading and storing the session.
	time.Sleep(5 * time.Millisecond)
	return &triage.StepResult{ConversationID: conversationID, Reply: "How long?"}, nil
}

type fakeRouter struct{}

func (fakeRouter) Execute(ctx context.Context, sessionID, input string) (string, bool) {
	if strings.HasPrefix(input, "/") {
		return "command " + input, true
	}
	return "", false
}

func (fakeRouter) ListCommands() []core.Command { return nil }

func newTestBot(tr Triager) *Bot {
	return &Bot{triage: tr, router: fakeRouter{}, sessions: state.NewSessions()}
}

func TestBot_AnswerKeepsOneConversationPerChat(t *testing.T) {
	ctx := context.Background()
	tr := &fakeTriage{}
	b := newTestBot(tr)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "How long?", b.answer(ctx, "telegram-1", "cough", func() {}))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, tr.created)
	require.Len(t, tr.ids, 6)
	for _, id := range tr.ids {
		assert.Equal(t, "conv-1", id)
	}
	assert.Equal(t, "conv-1", b.sessions.Active("telegram-1"))
}

func TestBot_AnswerRoutesCommands(t *testing.T) {
	tr := &fakeTriage{}
	b := newTestBot(tr)

	typed := false
	out := b.answer(context.Background(), "telegram-1", "/info", func() { typed = true })

	assert.Equal(t, "command /info", out)
	assert.False(t, typed)
	assert.Empty(t, tr.ids)
}

func TestErrorReply(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "empty", err: core.ErrEmptyMessage, want: "describe your symptoms"},
		{name: "unknown conversation", err: fmt.Errorf("failed to load conversation: %w", core.ErrNotFound), want: "has ended"},
		{name: "complete", err: core.ErrConversationComplete, want: "has ended"},
		{name: "generation", err: &core.GenerationError{Err: errors.New("HTTP 429")}, want: "could not analyse"},
		{name: "other", err: errors.New("disk full"), want: "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, errorReply(tt.err), tt.want)
		})
	}
}
