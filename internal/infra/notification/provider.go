package notification

import (
	"context"
	"log/slog"

	"pointshop/config"
	"pointshop/internal/domain/constants"
	"pointshop/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// noopSender discards messages when no destination is configured.
type noopSender struct {
	logger *slog.Logger
}

func (s *noopSender) Send(ctx context.Context, message string) error {
	s.logger.Debug("[NoopNotifier] Notification delivery disabled, skipping", slog.Int("length", len(message)))

	return nil
}

func (s *noopSender) Close() error {
	return nil
}

// SenderParams holds dependencies for MessageSender, injected by Fx
type SenderParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewMessageSender picks the outbound transport. With no provider configured
// it prefers Telegram, then a webhook, then discards.
func NewMessageSender(params SenderParams) (service.MessageSender, error) {
	cfg := params.Config
	logger := params.Logger

	provider := cfg.Notification.Provider
	if provider == "" {
		provider = detectProvider(cfg)
	}

	var sender service.MessageSender

	switch provider {
	case constants.NotificationProviderTelegram:
		if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
			return nil, errors.New("telegram bot token and chat ID are required for telegram provider")
		}
		logger.Info("Using Telegram notification sender", slog.Int64("chat_id", cfg.Telegram.ChatID))

		sender = NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Notification.Timeout, "")

	case constants.NotificationProviderWebhook:
		if cfg.Webhook.URL == "" {
			return nil, errors.New("webhook URL is required for webhook provider")
		}
		logger.Info("Using webhook notification sender", slog.String("url", cfg.Webhook.URL))

		sender = NewWebhookSender(cfg.Webhook.URL, cfg.Notification.Timeout)

	case constants.NotificationProviderNoop:
		logger.Info("Notifications not configured, using no-op sender")

		sender = &noopSender{logger: logger}

	default:
		return nil, errors.Errorf("unknown notification provider: %s", provider)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing MessageSender")

			return sender.Close()
		},
	})

	return sender, nil
}

func detectProvider(cfg *config.Config) string {
	switch {
	case cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0:
		return constants.NotificationProviderTelegram
	case cfg.Webhook.URL != "":
		return constants.NotificationProviderWebhook
	default:
		return constants.NotificationProviderNoop
	}
}

// NotifierParams holds dependencies for the Notifier, injected by Fx
type NotifierParams struct {
	fx.In

	Lc     fx.Lifecycle
	Sender service.MessageSender
	Config *config.Config
	Logger *slog.Logger
}

// NewNotifier wires a Dispatcher into the application lifecycle.
func NewNotifier(params NotifierParams) service.Notifier {
	cfg := params.Config.Notification
	dispatcher := NewDispatcher(params.Sender, cfg.QueueSize, cfg.Timeout, params.Logger)

	params.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			dispatcher.Start()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("Draining notification queue")

			return dispatcher.Stop(ctx)
		},
	})

	return dispatcher
}

// Module provides the notification FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewMessageSender, NewNotifier),
)
