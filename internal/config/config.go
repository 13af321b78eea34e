package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core. GeminiAPIKey is deliberately not required: its absence is a
	// user-visible error state answered per request, not a startup crash.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiURL    string `env:"GEMINI_API_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	DatabaseURL  string `env:"DATABASE_URL,required"`

	// Optional per-client rate limiting; disabled when empty.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Server
	Port int `env:"PORT" envDefault:"3000"`

	// Telegram error alerting; disabled when token or chat id is missing.
	LogBotToken       string `env:"LOG_TELEGRAM_BOT_TOKEN"`
	LogTelegramChatID int64  `env:"LOG_TELEGRAM_CHAT_ID"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
