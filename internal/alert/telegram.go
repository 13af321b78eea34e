package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
)

const maxMessageLen = 4096

// Notifier pushes operational alerts to a Telegram chat. A nil Notifier is
// valid and drops everything, so callers never need to guard.
type Notifier struct {
	bot    *bot.Bot
	chatID int64
}

// New builds a Notifier, or nil when the token or chat id is missing.
func New(token string, chatID int64) (*Notifier, error) {
	if token == "" || chatID == 0 {
		return nil, nil
	}
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create alert bot: %w", err)
	}
	return &Notifier{bot: b, chatID: chatID}, nil
}

func (n *Notifier) send(message string) {
	if n == nil {
		return
	}

	if len([]rune(message)) > maxMessageLen {
		message = string([]rune(message)[:maxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    n.chatID,
		Text:      message,
		ParseMode: "Markdown",
	})
	if err != nil {
		slog.Error("failed to send telegram alert", "error", err)
	}
}

// Error reports a failure with the call-site context.
func (n *Notifier) Error(err error, context string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		context, err.Error(), time.Now().Format("2006-01-02 15:04:05"))
	n.send(msg)
}

// Startup announces a successful boot.
func (n *Notifier) Startup(port int) {
	n.send(fmt.Sprintf("🚀 *Server started*\n\n*Port:* %d\n*Time:* %s",
		port, time.Now().Format("2006-01-02 15:04:05")))
}
