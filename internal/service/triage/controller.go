package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/medhelp/internal/config"
	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/internal/service/state"
	"github.com/sandevgo/medhelp/pkg/log"
)

const (
	titleMaxRunes      = 60
	defaultTemperature = 0.3
)

type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) []core.ScoredRecord
}

// StepResult is the outcome of one dialogue round.
type StepResult struct {
	ConversationID string
	Verdict        core.Verdict
	// Reply is the next question, or the markdown report once Complete.
	Reply    string
	Complete bool
	// Forced is set when the question budget ran out and the dialogue was
	// closed locally.
	Forced bool
}

type Controller struct {
	appCfg    *config.AppConfig
	ai        core.AIProvider
	retriever Retriever
	repo      core.ConversationRepository
	locks     *state.KeyedMutex
	now       func() time.Time

	temperature float64
}

type Option func(*Controller)

// WithTemperature overrides the sampling temperature sent with every round.
func WithTemperature(t float64) Option {
	return func(c *Controller) {
		if t > 0 {
			c.temperature = t
		}
	}
}

func NewController(
	appCfg *config.AppConfig,
	ai core.AIProvider,
	retriever Retriever,
	repo core.ConversationRepository,
	opts ...Option,
) *Controller {
	c := &Controller{
		appCfg:      appCfg,
		ai:          ai,
		retriever:   retriever,
		repo:        repo,
		locks:       state.NewKeyedMutex(),
		now:         time.Now,
		temperature: defaultTemperature,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Step runs one round: retrieve evidence, ask the model, decide whether the
// dialogue continues, persist the user and bot messages. An empty
// conversationID starts a new conversation, which is stored only if the
// round succeeds.
func (c *Controller) Step(ctx context.Context, conversationID, text string) (*StepResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, core.ErrEmptyMessage
	}

	isNew := conversationID == ""
	if isNew {
		conversationID = uuid.NewString()
	}

	unlock := c.locks.Lock(conversationID)
	defer unlock()

	logger := log.FromCtx(ctx).With().Str("conversation", conversationID).Logger()

	var conv *core.Conversation
	if isNew {
		now := c.now().UTC()
		conv = &core.Conversation{
			ID:        conversationID,
			Title:     makeTitle(text),
			CreatedAt: now,
			UpdatedAt: now,
		}
	} else {
		var err error
		conv, err = c.repo.Get(ctx, conversationID)
		if err != nil {
			return nil, fmt.Errorf("failed to load conversation: %w", err)
		}
		if conv.Complete() {
			return nil, core.ErrConversationComplete
		}
	}

	asked := conv.BotTurns()
	maxQuestions := c.maxQuestions()

	evidence := c.retriever.Retrieve(ctx, text+retrievalSuffix, c.topK())

	messages := []core.Message{
		{Role: core.RoleSystem, Content: systemPrompt},
		{Role: core.RoleUser, Content: buildUserContent(evidence, flattenHistory(conv.Messages, text), asked, maxQuestions)},
	}

	resp, err := c.ai.Chat(ctx, messages, core.ChatOptions{JSONMode: true, Temperature: c.temperature})
	if err != nil {
		return nil, &core.GenerationError{Err: err}
	}

	verdict, err := parseVerdict(resp.Content)
	if err != nil {
		logger.Debug().Str("content", resp.Content).Msg("unusable model response")
		return nil, &core.GenerationError{Err: err}
	}
	verdict.Retrieved = evidence

	forced := false
	if asked >= maxQuestions && !verdict.IsComplete() {
		logger.Warn().
			Int("asked", asked).
			Str("next_question", verdict.NextQuestion).
			Msg("question budget exhausted, closing dialogue")
		verdict.NextQuestion = core.CompletionSentinel
		forced = true
	}

	res := &StepResult{
		ConversationID: conversationID,
		Verdict:        verdict,
		Complete:       verdict.IsComplete(),
		Forced:         forced,
	}
	if res.Complete {
		res.Reply = FormatReport(verdict)
	} else {
		res.Reply = verdict.NextQuestion
	}

	if err := c.persist(ctx, conv, isNew, text, res); err != nil {
		return nil, err
	}

	logger.Info().
		Int("question", asked+1).
		Int("evidence", len(evidence)).
		Bool("complete", res.Complete).
		Msg("triage round finished")
	return res, nil
}

func (c *Controller) persist(ctx context.Context, conv *core.Conversation, isNew bool, text string, res *StepResult) error {
	userAt := c.now().UTC()
	botAt := c.now().UTC()
	if !botAt.After(userAt) {
		botAt = userAt.Add(time.Microsecond)
	}

	user := core.ConversationMessage{
		Sender:    core.SenderUser,
		Text:      text,
		Timestamp: userAt,
	}
	bot := core.ConversationMessage{
		Sender:           core.SenderBot,
		Text:             res.Reply,
		Timestamp:        botAt,
		RetrievedSources: sourceURLs(res.Verdict.Retrieved),
		Final:            res.Complete,
	}

	if err := c.repo.AppendRound(ctx, *conv, isNew, user, bot); err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}
	return nil
}

// Conversations lists stored conversations, most recently active first.
func (c *Controller) Conversations(ctx context.Context) ([]core.Conversation, error) {
	return c.repo.List(ctx, c.appCfg.HistoryListMax)
}

func (c *Controller) Conversation(ctx context.Context, id string) (*core.Conversation, error) {
	conv, err := c.repo.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("conversation %s: %w", id, err)
	}
	return conv, err
}

func (c *Controller) maxQuestions() int {
	if c.appCfg.MaxQuestions > 0 {
		return c.appCfg.MaxQuestions
	}
	return 5
}

func (c *Controller) topK() int {
	if c.appCfg.RetrievalTopK > 0 {
		return c.appCfg.RetrievalTopK
	}
	return 3
}

func makeTitle(text string) string {
	runes := []rune(oneLine(text))
	if len(runes) > titleMaxRunes {
		runes = runes[:titleMaxRunes]
	}
	return string(runes)
}
