package telegram

import (
	"context"
	"strings"

	"github.com/sandevgo/medhelp/pkg/conv"
	"github.com/sandevgo/medhelp/pkg/log"
	tele "gopkg.in/telebot.v3"
)

// Headroom for tags added by the HTML rendering.
const maxMarkdownLen = conv.TelegramMessageLimit - 400

type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// sendMarkdown splits md on paragraph boundaries, converts each part to
// Telegram HTML and sends them in order.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string) error {
	logger := log.FromCtx(ctx)

	for i, part := range conv.SplitMarkdown(md, maxMarkdownLen) {
		html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(part)))
		if html == "" {
			continue
		}

		if _, err := s.bot.Send(to, html, tele.ModeHTML, tele.NoPreview); err != nil {
			logger.Error().Err(err).Int("part", i).Int("len", len(html)).Msg("failed to send telegram message")
			return err
		}
	}
	return nil
}
