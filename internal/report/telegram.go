package report

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Notifier delivers backtest reports and recommendations to a Telegram
// chat. Delivery failures are reported to the caller, never retried
// here.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewNotifier connects to the Telegram Bot API.
func NewNotifier(token string, chatID int64) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connecting to Telegram: %w", err)
	}

	logger := log.With().Str("component", "notifier").Logger()
	logger.Info().Str("bot", bot.Self.UserName).Msg("Telegram bot authorized")

	return &Notifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
	}, nil
}

// Send delivers one plain-text message to the configured chat.
func (n *Notifier) Send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("failed to send Telegram message")
		return fmt.Errorf("sending message: %w", err)
	}
	return nil
}
