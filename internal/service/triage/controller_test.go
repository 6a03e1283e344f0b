package triage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sandevgo/medhelp/internal/config"
	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(ai *mockAI, ret *mockRetriever, repo core.ConversationRepository) *Controller {
	cfg := &config.AppConfig{MaxQuestions: 5, RetrievalTopK: 3, HistoryListMax: 20}
	return NewController(cfg, ai, ret, repo)
}

var migraineEvidence = []core.ScoredRecord{
	{IndexRecord: core.IndexRecord{Title: "Migraine - NHS", SourceURL: "https://nhs.example/migraine", Text: "Migraine is a moderate or severe headache."}, Score: 0.71},
}

func TestController_FirstStep(t *testing.T) {
	ctx := context.Background()
	ai := &mockAI{chatFunc: reply(askAgain)}
	ret := &mockRetriever{records: migraineEvidence}
	repo := newMemRepo()
	c := newTestController(ai, ret, repo)

	res, err := c.Step(ctx, "", "Throbbing headache on one side for two days")
	require.NoError(t, err)

	assert.NotEmpty(t, res.ConversationID)
	assert.False(t, res.Complete)
	assert.False(t, res.Forced)
	assert.Equal(t, "Does light make it worse?", res.Reply)
	assert.Equal(t, migraineEvidence, res.Verdict.Retrieved)

	assert.Equal(t, []string{"Throbbing headache on one side for two days medical symptoms diagnosis"}, ret.queries)
	assert.Equal(t, []int{3}, ret.topKs)

	require.Len(t, ai.calls, 1)
	assert.Equal(t, core.RoleSystem, ai.calls[0][0].Role)
	assert.True(t, ai.opts[0].JSONMode)
	assert.Equal(t, 0.3, ai.opts[0].Temperature)
	assert.Contains(t, ai.lastPrompt(), "Migraine - NHS")
	assert.Contains(t, ai.lastPrompt(), "Patient: Throbbing headache on one side for two days")
	assert.Contains(t, ai.lastPrompt(), "Ask question 1 of at most 5")

	conv, err := c.Conversation(ctx, res.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "Throbbing headache on one side for two days", conv.Title)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, core.SenderUser, conv.Messages[0].Sender)
	assert.Equal(t, core.SenderBot, conv.Messages[1].Sender)
	assert.Equal(t, []string{"https://nhs.example/migraine"}, conv.Messages[1].RetrievedSources)
	assert.False(t, conv.Messages[1].Final)
	assert.True(t, conv.Messages[1].Timestamp.After(conv.Messages[0].Timestamp))
}

func TestController_TitleTruncated(t *testing.T) {
	c := newTestController(&mockAI{chatFunc: reply(askAgain)}, &mockRetriever{}, newMemRepo())

	res, err := c.Step(context.Background(), "", strings.Repeat("é", 100))
	require.NoError(t, err)

	conv, err := c.Conversation(context.Background(), res.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 60), conv.Title)
}

func TestController_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty message", func(t *testing.T) {
		ai := &mockAI{chatFunc: reply(askAgain)}
		c := newTestController(ai, &mockRetriever{}, newMemRepo())

		_, err := c.Step(ctx, "", "   ")
		assert.ErrorIs(t, err, core.ErrEmptyMessage)
		assert.Empty(t, ai.calls)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		c := newTestController(&mockAI{chatFunc: reply(askAgain)}, &mockRetriever{}, newMemRepo())

		_, err := c.Step(ctx, "missing", "hello")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("generation failure leaves nothing behind", func(t *testing.T) {
		repo := newMemRepo()
		ai := &mockAI{chatFunc: func(context.Context, []core.Message, core.ChatOptions) (core.Message, error) {
			return core.Message{}, errors.New("HTTP 503")
		}}
		c := newTestController(ai, &mockRetriever{}, repo)

		_, err := c.Step(ctx, "", "cough")
		var ge *core.GenerationError
		require.ErrorAs(t, err, &ge)
		assert.ErrorContains(t, err, "HTTP 503")

		list, err := c.Conversations(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("malformed verdict does not advance the dialogue", func(t *testing.T) {
		repo := newMemRepo()
		ai := &mockAI{chatFunc: reply(askAgain)}
		c := newTestController(ai, &mockRetriever{}, repo)

		res, err := c.Step(ctx, "", "cough")
		require.NoError(t, err)

		ai.chatFunc = reply("not json at all")
		_, err = c.Step(ctx, res.ConversationID, "dry cough")
		var ge *core.GenerationError
		require.ErrorAs(t, err, &ge)

		conv, err := c.Conversation(ctx, res.ConversationID)
		require.NoError(t, err)
		assert.Len(t, conv.Messages, 2)
	})

	t.Run("persistence failure stores nothing", func(t *testing.T) {
		repo := newMemRepo()
		repo.appendErr = errors.New("disk full")
		c := newTestController(&mockAI{chatFunc: reply(askAgain)}, &mockRetriever{}, repo)

		_, err := c.Step(ctx, "", "cough")
		assert.ErrorContains(t, err, "disk full")

		list, err := c.Conversations(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestController_EarlyCompletion(t *testing.T) {
	ctx := context.Background()
	ai := &mockAI{chatFunc: reply(finish)}
	c := newTestController(ai, &mockRetriever{records: migraineEvidence}, newMemRepo())

	res, err := c.Step(ctx, "", "Migraine again, same as always")
	require.NoError(t, err)

	assert.True(t, res.Complete)
	assert.False(t, res.Forced)
	assert.Contains(t, res.Reply, "1. **Migraine**: 70%")
	assert.Contains(t, res.Reply, "[Migraine - NHS](https://nhs.example/migraine)")

	conv, err := c.Conversation(ctx, res.ConversationID)
	require.NoError(t, err)
	assert.True(t, conv.Complete())

	_, err = c.Step(ctx, res.ConversationID, "one more thing")
	assert.ErrorIs(t, err, core.ErrConversationComplete)
	assert.Len(t, ai.calls, 1)
}

func TestController_DialogueBound(t *testing.T) {
	ctx := context.Background()
	ai := &mockAI{chatFunc: reply(askAgain)}
	c := newTestController(ai, &mockRetriever{}, newMemRepo())

	res, err := c.Step(ctx, "", "Headache")
	require.NoError(t, err)
	id := res.ConversationID

	questions := 1
	for !res.Complete {
		require.LessOrEqual(t, questions, 5, "must stop after the question budget")
		res, err = c.Step(ctx, id, "answer")
		require.NoError(t, err)
		if !res.Complete {
			questions++
		}
	}

	assert.Equal(t, 5, questions)
	assert.True(t, res.Forced)
	assert.Equal(t, core.CompletionSentinel, res.Verdict.NextQuestion)
	assert.Contains(t, res.Reply, fallbackRecommendation)
	assert.Contains(t, ai.lastPrompt(), "MUST finish now")

	conv, err := c.Conversation(ctx, id)
	require.NoError(t, err)
	assert.Len(t, conv.Messages, 12)
	assert.Equal(t, 6, conv.BotTurns())
	assert.True(t, conv.Messages[11].Final)
	assert.NotContains(t, ai.lastPrompt(), "Triage summary")
}

func TestController_ConcurrentRoundsAreSerialised(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	ai := &mockAI{chatFunc: reply(askAgain)}
	c := newTestController(ai, &mockRetriever{}, repo)
	c.appCfg.MaxQuestions = 100

	res, err := c.Step(ctx, "", "start")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Step(ctx, res.ConversationID, "answer")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	conv, err := c.Conversation(ctx, res.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 18)
	for i, m := range conv.Messages {
		want := core.SenderUser
		if i%2 == 1 {
			want = core.SenderBot
		}
		assert.Equal(t, want, m.Sender, "message %d", i)
	}
	assert.Zero(t, c.locks.Len())
}

func TestController_WithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.NewDB(ctx, filepath.Join(t.TempDir(), "medhelp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ai := &mockAI{chatFunc: reply(askAgain)}
	c := newTestController(ai, &mockRetriever{records: migraineEvidence}, sqlite.NewConversationsRepo(db))

	res, err := c.Step(ctx, "", "Headache")
	require.NoError(t, err)

	ai.chatFunc = reply(finish)
	res, err = c.Step(ctx, res.ConversationID, "Yes, light makes it worse")
	require.NoError(t, err)
	assert.True(t, res.Complete)

	list, err := c.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.ConversationID, list[0].ID)

	conv, err := c.Conversation(ctx, res.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 4)
	assert.True(t, conv.Messages[3].Final)
	assert.Equal(t, []string{"https://nhs.example/migraine"}, conv.Messages[3].RetrievedSources)
	assert.Contains(t, ai.lastPrompt(), "Assistant: Does light make it worse?")

	_, err = c.Conversation(ctx, "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestController_FailedBotInsertRollsBackRound(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.NewDB(ctx, filepath.Join(t.TempDir(), "medhelp.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ai := &mockAI{chatFunc: reply(askAgain)}
	c := newTestController(ai, &mockRetriever{}, sqlite.NewConversationsRepo(db))

	first, err := c.Step(ctx, "", "cough")
	require.NoError(t, err)

	// Only the bot half of a round can be written from here on.
	_, err = db.ExecContext(ctx, `CREATE TRIGGER reject_bot BEFORE INSERT ON conversation_messages
		WHEN NEW.sender = 'bot' BEGIN SELECT RAISE(ABORT, 'disk full'); END`)
	require.NoError(t, err)

	_, err = c.Step(ctx, "", "headache")
	assert.ErrorContains(t, err, "disk full")

	_, err = c.Step(ctx, first.ConversationID, "dry cough")
	assert.ErrorContains(t, err, "disk full")

	list, err := c.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, first.ConversationID, list[0].ID)

	conv, err := c.Conversation(ctx, first.ConversationID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "cough", conv.Messages[0].Text)
	assert.Equal(t, core.SenderBot, conv.Messages[1].Sender)
}
