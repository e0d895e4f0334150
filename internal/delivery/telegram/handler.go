package telegram

import (
	"context"
	"errors"
	"net/http"

	"forex-signals/internal/dto"
	"forex-signals/internal/service"
	"forex-signals/pkg/logger"
	"forex-signals/pkg/middleware"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) withContext(handler func(ctx context.Context, c telebot.Context) error) func(c telebot.Context) error {
	return middleware.WithContext(t.ctx, t.cfg.Telegram.TimeoutDuration, handler)
}

func (t *TelegramBotHandler) RegisterHandlers() {
	t.echo.POST("/api/v1/telegram/webhook", func(c echo.Context) error {
		var update telebot.Update
		if err := c.Bind(&update); err != nil {
			t.log.ErrorContext(t.ctx, "Cannot bind webhook update", logger.ErrorField(err))
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
		}
		t.bot.ProcessUpdate(update)
		return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", nil))
	})

	t.bot.Handle("/start", t.withContext(t.handleStart))
	t.bot.Handle("/help", t.withContext(t.handleHelp))
	t.bot.Handle("/activate", t.withContext(t.handleActivate))
	t.bot.Handle("/stats", t.withContext(t.handleStats))
	t.bot.Handle("/generate", t.withContext(t.handleGenerate))
	t.bot.Handle("/setbalance", t.withContext(t.handleSetBalance))
	t.bot.Handle(&btnActivateInfo, t.withContext(t.handleActivateInfo))
	t.bot.Handle(telebot.OnText, t.withContext(t.handleConversation))
}

func (t *TelegramBotHandler) handleStart(ctx context.Context, c telebot.Context) error {
	sender := c.Sender()
	if err := t.service.AccessService.EnsureUser(ctx, sender.ID, sender.Username, sender.FirstName, sender.LastName); err != nil {
		t.log.ErrorContext(ctx, "failed to register user", logger.ErrorField(err))
	}
	t.resetUserState(sender.ID)

	allowed, _, err := t.service.AccessService.HasAccess(ctx, sender.ID)
	if err != nil {
		t.log.ErrorContext(ctx, "access check failed", logger.ErrorField(err))
		return t.sendInternalError(ctx, c)
	}

	if !allowed {
		message := "👋 *Welcome to the AI Trading Bot!*\n\n" +
			"Your subscription is not active yet. Redeem an activation code with\n" +
			"`/activate YOURCODE`\n\n" +
			"Don't have one? Contact the administrator."
		_, err := t.sender.Send(ctx, c, message, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}, activateInfoMenu())
		return err
	}

	message := "👋 *Welcome back to the AI Trading Bot!*\n\n" +
		"📈 Tap *Start Trading* to request a signal\n" +
		"📊 Tap *Stats* to review your results\n\n" +
		"Use /help for the full command list."
	_, err = t.sender.Send(ctx, c, message, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}, mainMenu())
	return err
}

func (t *TelegramBotHandler) handleHelp(ctx context.Context, c telebot.Context) error {
	message := `❓ *AI Trading Bot — Help*

🤖 *Commands:*
/start - Show the main menu
/help - Show this guide
/activate CODE - Redeem an activation code
/stats - Your trading statistics
/setbalance AMOUNT - Set the balance used for stake sizing

📈 *Trading flow:*
1. Tap *Start Trading*
2. Pick the expiry and a market
3. Enter at the open of the next bar with the suggested stake
4. Report *Win* or *Loss* so the stake plan stays on track

📌 Signals are a reference, not financial advice.`
	_, err := t.sender.Send(ctx, c, message, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	return err
}

func (t *TelegramBotHandler) handleActivateInfo(ctx context.Context, c telebot.Context) error {
	if err := t.sender.Respond(ctx, c); err != nil {
		return err
	}
	message := "Send `/activate YOURCODE` to unlock the bot.\nCodes are single use and extend your access by the number of days they carry."
	_, err := t.sender.Send(ctx, c, message, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	return err
}

// handleConversation routes plain-text messages through the reply-keyboard
// trading flow based on the user's stored state.
func (t *TelegramBotHandler) handleConversation(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID
	text := c.Text()

	if text == btnTextBack {
		return t.handleBack(ctx, c)
	}

	switch t.userState(userID) {
	case StateWaitingExpiry:
		return t.handleExpiryChoice(ctx, c)
	case StateWaitingMarket:
		return t.handleMarketChoice(ctx, c)
	case StateWaitingResult:
		return t.handleResultChoice(ctx, c)
	}

	switch text {
	case btnTextStartTrading:
		return t.handleStartTrading(ctx, c)
	case btnTextStats:
		return t.handleStats(ctx, c)
	}

	_, err := t.sender.Send(ctx, c, "I don't recognize that. Use /help to see what I can do.")
	return err
}

func (t *TelegramBotHandler) handleBack(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	switch t.userState(userID) {
	case StateWaitingMarket:
		t.setUserState(userID, StateWaitingExpiry)
		_, err := t.sender.Send(ctx, c, "⏱ Choose the expiry:", expiryMenu())
		return err
	case StateWaitingResult:
		// A pending trade still needs its outcome; going back only hides
		// the keyboard, the trade stays registered.
		t.resetUserState(userID)
		_, err := t.sender.Send(ctx, c, "Your trade is still open. Report it from the main menu once it resolves.", mainMenu())
		return err
	default:
		t.resetUserState(userID)
		_, err := t.sender.Send(ctx, c, "Main menu:", mainMenu())
		return err
	}
}

func (t *TelegramBotHandler) sendInternalError(ctx context.Context, c telebot.Context) error {
	_, err := t.sender.Send(ctx, c, "Something went wrong, please try again.")
	return err
}

// replyForError maps recoverable service errors onto user-facing text; ok is
// false for unexpected errors the caller should log.
func replyForError(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrAccessDenied):
		return "🔒 Your subscription is not active. Redeem a code with /activate YOURCODE.", true
	case errors.Is(err, service.ErrInvalidCode):
		return "❌ That activation code does not exist. Check for typos and try again.", true
	case errors.Is(err, service.ErrCodeAlreadyUsed):
		return "❌ That activation code has already been used.", true
	case errors.Is(err, service.ErrTradePending):
		return "⏳ You already have an open trade. Report its result before requesting a new signal.", true
	case errors.Is(err, service.ErrNoActiveTrade):
		return "ℹ️ You have no open trade to report.", true
	default:
		return "", false
	}
}
