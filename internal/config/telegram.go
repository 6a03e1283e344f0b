package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/medhelp/pkg/log"
)

type TelegramConfig struct {
	Token string `env:"TELEGRAM_TOKEN,required,notEmpty"`
	// AllowedIDs limits who may talk to the bot. Empty allows everyone.
	AllowedIDs []int64 `env:"TELEGRAM_ALLOWED_IDS" envSeparator:","`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}

func (c TelegramConfig) Allowed(id int64) bool {
	if len(c.AllowedIDs) == 0 {
		return true
	}
	for _, a := range c.AllowedIDs {
		if a == id {
			return true
		}
	}
	return false
}
