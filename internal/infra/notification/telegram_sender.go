package notification

import (
	"context"
	"net/http"
	"time"

	"pointshop/internal/domain/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

type telegramSender struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramSender builds a bot client without calling getMe, so start-up
// never waits on Telegram. An empty endpoint uses tgbotapi.APIEndpoint.
func NewTelegramSender(token string, chatID int64, timeout time.Duration, endpoint string) service.MessageSender {
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: &http.Client{Timeout: timeout},
		Buffer: 100,
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot.SetAPIEndpoint(endpoint)

	return &telegramSender{bot: bot, chatID: chatID}
}

func (s *telegramSender) Send(ctx context.Context, message string) error {
	msg := tgbotapi.NewMessage(s.chatID, message)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	done := make(chan error, 1)
	go func() {
		_, err := s.bot.Send(msg)
		done <- err
	}()

	select {
	case err := <-done:
		return errors.WithStack(err)
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	}
}

func (s *telegramSender) Close() error {
	return nil
}
