package triage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/sandevgo/medhelp/internal/core"
)

type mockAI struct {
	chatFunc func(ctx context.Context, history []core.Message, opts core.ChatOptions) (core.Message, error)

	mu    sync.Mutex
	calls [][]core.Message
	opts  []core.ChatOptions
}

func (m *mockAI) Chat(ctx context.Context, history []core.Message, opts core.ChatOptions) (core.Message, error) {
	m.mu.Lock()
	m.calls = append(m.calls, history)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	return m.chatFunc(ctx, history, opts)
}

func (m *mockAI) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	last := m.calls[len(m.calls)-1]
	return last[len(last)-1].Content
}

type mockRetriever struct {
	records []core.ScoredRecord
	queries []string
	topKs   []int
}

func (m *mockRetriever) Retrieve(ctx context.Context, query string, topK int) []core.ScoredRecord {
	m.queries = append(m.queries, query)
	m.topKs = append(m.topKs, topK)
	return m.records
}

// memRepo is an in-memory core.ConversationRepository.
type memRepo struct {
	mu        sync.Mutex
	convs     map[string]*core.Conversation
	appendErr error
}

func newMemRepo() *memRepo {
	return &memRepo{convs: make(map[string]*core.Conversation)}
}

func (r *memRepo) Create(ctx context.Context, conv core.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := conv
	r.convs[conv.ID] = &c
	return nil
}

func (r *memRepo) Get(ctx context.Context, id string) (*core.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *c
	cp.Messages = append([]core.ConversationMessage(nil), c.Messages...)
	return &cp, nil
}

func (r *memRepo) AppendMessage(ctx context.Context, id string, msg core.ConversationMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	c, ok := r.convs[id]
	if !ok {
		return core.ErrNotFound
	}
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = msg.Timestamp
	return nil
}

func (r *memRepo) AppendRound(ctx context.Context, conv core.Conversation, isNew bool, user, bot core.ConversationMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}

	c, ok := r.convs[conv.ID]
	switch {
	case isNew && ok:
		return errors.New("conversation exists")
	case isNew:
		cp := conv
		cp.Messages = nil
		c = &cp
		r.convs[conv.ID] = c
	case !ok:
		return core.ErrNotFound
	}
	c.Messages = append(c.Messages, user, bot)
	c.UpdatedAt = bot.Timestamp
	return nil
}

func (r *memRepo) List(ctx context.Context, limit int) ([]core.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Conversation, 0, len(r.convs))
	for _, c := range r.convs {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func reply(content string) func(context.Context, []core.Message, core.ChatOptions) (core.Message, error) {
	return func(context.Context, []core.Message, core.ChatOptions) (core.Message, error) {
		return core.Message{Role: core.RoleAssistant, Content: content}, nil
	}
}

const askAgain = `{"candidates":[{"condition":"Migraine","probability":0.6},{"condition":"Tension headache","probability":0.3}],
"next_question":"Does light make it worse?","top_recommendation":"","evidence_used":true,"evidence_reasoning":"NHS page"}`

const finish = `{"candidates":[{"condition":"Tension headache","probability":0.3},{"condition":"Migraine","probability":0.7}],
"next_question":"DIAGNOSIS_COMPLETE","top_recommendation":"Rest in a dark room and see a GP if it persists.","evidence_used":false,"evidence_reasoning":""}`
