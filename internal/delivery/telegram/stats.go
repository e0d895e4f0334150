package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"forex-signals/internal/model"
	"forex-signals/pkg/logger"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handleStats(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	stats, err := t.service.OutcomeService.Stats(ctx, userID)
	if err != nil {
		t.log.ErrorContext(ctx, "failed to load stats", logger.ErrorField(err))
		return t.sendInternalError(ctx, c)
	}

	_, err = t.sender.Send(ctx, c, formatStats(stats), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}, mainMenu())
	return err
}

func formatStats(stats *model.UserStats) string {
	var b strings.Builder
	b.WriteString("📈 *Your Trading Stats*\n\n")
	fmt.Fprintf(&b, "💰 Balance: $%.2f\n", stats.Balance)
	fmt.Fprintf(&b, "🎯 Trades: %d (%dW / %dL)\n", stats.Trades, stats.Wins, stats.Losses)
	fmt.Fprintf(&b, "🏅 Win rate: %.1f%%\n", stats.WinRate())
	fmt.Fprintf(&b, "🔥 Streak: %+d (best %+d, worst %+d)\n", stats.CurrentStreak, stats.BestStreak, stats.WorstStreak)
	fmt.Fprintf(&b, "📅 Today (%s): %dW / %dL, streak %+d\n", stats.DailyDate, stats.DailyWins, stats.DailyLosses, stats.DailyStreak)

	breakdown, err := stats.MarketBreakdown()
	if err == nil && len(breakdown) > 0 {
		b.WriteString("\n📊 *Per market:*\n")
		symbols := make([]string, 0, len(breakdown))
		for symbol := range breakdown {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		for _, symbol := range symbols {
			record := breakdown[symbol]
			fmt.Fprintf(&b, "  %s — %dW / %dL\n", symbol, record.Wins, record.Losses)
		}
	}

	return b.String()
}
