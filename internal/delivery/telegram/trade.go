package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"forex-signals/internal/dto"
	"forex-signals/internal/indicator"
	"forex-signals/internal/repository"
	"forex-signals/internal/service"
	"forex-signals/pkg/logger"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handleStartTrading(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	allowed, _, err := t.service.AccessService.HasAccess(ctx, userID)
	if err != nil {
		t.log.ErrorContext(ctx, "access check failed", logger.ErrorField(err))
		return t.sendInternalError(ctx, c)
	}
	if !allowed {
		_, err := t.sender.Send(ctx, c, "🔒 Your subscription is not active. Redeem a code with /activate YOURCODE.", activateInfoMenu())
		return err
	}

	if pending, found := t.service.OutcomeService.PendingTrade(userID); found {
		t.setUserState(userID, StateWaitingResult)
		msg := fmt.Sprintf("⏳ You still have an open %s trade on %s. How did it go?", pending.Direction, pending.Symbol)
		_, err := t.sender.Send(ctx, c, msg, resultMenu())
		return err
	}

	t.setUserState(userID, StateWaitingExpiry)
	_, err = t.sender.Send(ctx, c, "⏱ Choose the expiry:", expiryMenu())
	return err
}

func (t *TelegramBotHandler) handleExpiryChoice(ctx context.Context, c telebot.Context) error {
	if c.Text() != btnTextExpiry5Min {
		_, err := t.sender.Send(ctx, c, "Please pick an expiry from the keyboard.", expiryMenu())
		return err
	}

	t.setUserState(c.Sender().ID, StateWaitingMarket)
	_, err := t.sender.Send(ctx, c, "📊 Choose a market:", marketMenu(dto.ForexPairLabels))
	return err
}

func (t *TelegramBotHandler) handleMarketChoice(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	symbol, ok := dto.ForexPairs[c.Text()]
	if !ok {
		_, err := t.sender.Send(ctx, c, "Please pick a market from the keyboard.", marketMenu(dto.ForexPairLabels))
		return err
	}

	signal, issued, err := t.service.SignalService.RequestSignal(ctx, userID, symbol)
	if err != nil {
		if reply, known := replyForError(err); known {
			t.resetUserState(userID)
			_, sendErr := t.sender.Send(ctx, c, reply, mainMenu())
			return sendErr
		}
		if errors.Is(err, repository.ErrMarketDataUnavailable) || errors.Is(err, indicator.ErrInsufficientData) {
			_, sendErr := t.sender.Send(ctx, c, "📡 Market data is unavailable right now. Try again in a moment.", marketMenu(dto.ForexPairLabels))
			return sendErr
		}
		t.log.ErrorContext(ctx, "signal request failed",
			logger.StringField("symbol", symbol),
			logger.ErrorField(err))
		return t.sendInternalError(ctx, c)
	}

	if !issued {
		_, err := t.sender.Send(ctx, c, fmt.Sprintf("🔍 No clear setup on %s right now. Pick another market or try again in a few minutes.", symbol), marketMenu(dto.ForexPairLabels))
		return err
	}

	t.setUserState(userID, StateWaitingResult)
	_, err = t.sender.Send(ctx, c, formatSignal(signal), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}, resultMenu())
	return err
}

func (t *TelegramBotHandler) handleResultChoice(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	var win bool
	switch c.Text() {
	case btnTextWin:
		win = true
	case btnTextLoss:
		win = false
	default:
		_, err := t.sender.Send(ctx, c, "Please report the result from the keyboard.", resultMenu())
		return err
	}

	result, err := t.service.OutcomeService.ReportOutcome(ctx, userID, win)
	if err != nil {
		if reply, known := replyForError(err); known {
			t.resetUserState(userID)
			_, sendErr := t.sender.Send(ctx, c, reply, mainMenu())
			return sendErr
		}
		t.log.ErrorContext(ctx, "failed to report outcome", logger.ErrorField(err))
		return t.sendInternalError(ctx, c)
	}

	t.resetUserState(userID)
	_, err = t.sender.Send(ctx, c, formatOutcome(result), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}, mainMenu())
	return err
}

func formatSignal(signal *dto.Signal) string {
	arrow := "📈"
	if signal.Direction == dto.DirectionSell {
		arrow = "📉"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 *%s Signal*\n\n", signal.Symbol)
	fmt.Fprintf(&b, "%s Direction: *%s*\n", arrow, signal.Direction)
	fmt.Fprintf(&b, "🎚 Confidence: *%d%%*\n", signal.Confidence)
	fmt.Fprintf(&b, "🕐 Entry: %s\n", signal.EntryTiming)
	fmt.Fprintf(&b, "⏱ Expiry: %d minutes\n", signal.ExpiryMinutes)
	fmt.Fprintf(&b, "💰 Stake: *$%.2f* (%.0f%%, step %d)\n", signal.StakeAmount, signal.RiskPercent, signal.PlaybackStep+1)
	if signal.Commentary != "" {
		fmt.Fprintf(&b, "\n🤖 %s\n", signal.Commentary)
	}
	b.WriteString("\nReport the result below once the trade closes.")
	return b.String()
}

func formatOutcome(result *service.OutcomeResult) string {
	header := "✅ *Win recorded!*"
	if !result.Win {
		header = "❌ *Loss recorded.*"
	}

	stats := result.Stats
	var b strings.Builder
	b.WriteString(header + "\n\n")
	fmt.Fprintf(&b, "📊 Today: %dW / %dL (streak %+d)\n", stats.DailyWins, stats.DailyLosses, stats.DailyStreak)
	fmt.Fprintf(&b, "🏆 Lifetime: %dW / %dL, win rate %.1f%%\n", stats.Wins, stats.Losses, stats.WinRate())
	fmt.Fprintf(&b, "💰 Next stake: $%.2f (%.0f%%, step %d)\n", result.NextQuote.StakeAmount, result.NextQuote.RiskPercent, result.NextQuote.PlaybackStep+1)
	return b.String()
}
