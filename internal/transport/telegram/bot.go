package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sandevgo/medhelp/internal/config"
	"github.com/sandevgo/medhelp/internal/core"
	"github.com/sandevgo/medhelp/internal/service/state"
	"github.com/sandevgo/medhelp/internal/service/triage"
	"github.com/sandevgo/medhelp/pkg/log"
	tele "gopkg.in/telebot.v3"
)

const baseContextKey = "base_context"

const greeting = "👋 **Hi, I'm MedHelp.**\n\n" +
	"Describe your symptoms in a sentence or two and I'll ask a few short questions before giving you a summary.\n\n" +
	"I am not a doctor. In an emergency call your local emergency number."

type Triager interface {
	Step(ctx context.Context, conversationID, text string) (*triage.StepResult, error)
}

type Bot struct {
	bot      *tele.Bot
	cfg      *config.TelegramConfig
	triage   Triager
	router   core.CmdRouter
	sessions *state.Sessions
	sender   *sender
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	triage Triager,
	router core.CmdRouter,
	sessions *state.Sessions,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		cfg:      cfg,
		triage:   triage,
		router:   router,
		sessions: sessions,
		sender:   newSender(b),
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || !bot.cfg.Allowed(c.Sender().ID) {
				return nil
			}
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleStart(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	key := chatKey(c)

	unlock := b.sessions.Lock(key)
	b.sessions.Reset(key)
	unlock()

	return b.sender.sendMarkdown(ctx, c.Chat(), greeting)
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	out := b.answer(ctx, chatKey(c), c.Text(), func() { _ = c.Notify(tele.Typing) })
	return b.sender.sendMarkdown(ctx, c.Chat(), out)
}

// answer runs one incoming text through the command router or the triage
// dialogue of the chat's active conversation.
func (b *Bot) answer(ctx context.Context, key, text string, typing func()) string {
	logger := log.FromCtx(ctx).With().Str("chat", key).Logger()

	// telebot runs handlers concurrently; one chat is answered one message at a time.
	unlock := b.sessions.Lock(key)
	defer unlock()

	if out, ok := b.router.Execute(ctx, key, text); ok {
		return out
	}

	typing()

	res, err := b.triage.Step(ctx, b.sessions.Active(key), text)
	if err != nil {
		logger.Error().Err(err).Msg("triage step failed")
		if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrConversationComplete) {
			b.sessions.Reset(key)
		}
		return errorReply(err)
	}

	if res.Complete {
		b.sessions.Reset(key)
	} else {
		b.sessions.Set(key, res.ConversationID)
	}
	return res.Reply
}

func chatKey(c tele.Context) string {
	return "telegram-" + strconv.FormatInt(c.Chat().ID, 10)
}

// errorReply maps a failed round to something a patient can act on.
func errorReply(err error) string {
	var ge *core.GenerationError
	switch {
	case errors.Is(err, core.ErrEmptyMessage):
		return "Please describe your symptoms."
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrConversationComplete):
		return "That conversation has ended. Send a message to start a new one."
	case errors.As(err, &ge):
		return "⚠️ I could not analyse that just now. Please send your message again."
	default:
		return "⚠️ Something went wrong on my side. Please try again later."
	}
}
