package telegram

import (
	"context"
	"time"

	"forex-signals/config"
	"forex-signals/internal/service"
	"forex-signals/pkg/cache"
	"forex-signals/pkg/logger"
	"forex-signals/pkg/telegram"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

type TelegramBotHandler struct {
	ctx           context.Context
	cfg           *config.Config
	bot           *telebot.Bot
	log           *logger.Logger
	sender        *telegram.RateLimitedSender
	echo          *echo.Echo
	service       *service.Service
	inmemoryCache cache.Cache
}

func NewTelegramBotHandler(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	bot *telebot.Bot,
	sender *telegram.RateLimitedSender,
	echo *echo.Echo,
	svc *service.Service,
	inmemoryCache cache.Cache,
) *TelegramBotHandler {
	return &TelegramBotHandler{
		ctx:           ctx,
		cfg:           cfg,
		bot:           bot,
		log:           log,
		sender:        sender,
		echo:          echo,
		service:       svc,
		inmemoryCache: inmemoryCache,
	}
}

func (t *TelegramBotHandler) Start() {
	t.log.Info("Starting Telegram bot...")

	if t.cfg.Telegram.WebhookURL != "" {
		t.log.Info("Setting webhook URL", logger.StringField("webhook_url", t.cfg.Telegram.WebhookURL))
		if err := t.bot.SetWebhook(&telebot.Webhook{
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: t.cfg.Telegram.WebhookURL,
			},
		}); err != nil {
			t.log.Error("Failed to set webhook", logger.ErrorField(err))
		}
	}

	t.RegisterHandlers()
}

func (t *TelegramBotHandler) Stop() {
	t.log.Info("Stopping Telegram bot...")

	ctx, cancel := context.WithTimeout(t.ctx, 10*time.Second)
	defer cancel()

	stopDone := make(chan struct{}, 1)
	go func() {
		t.bot.Stop()
		stopDone <- struct{}{}
	}()

	select {
	case <-stopDone:
		t.log.Info("Telegram bot stopped successfully")
	case <-ctx.Done():
		t.log.Warn("Timeout while stopping bot, forcing shutdown")
	}
}
