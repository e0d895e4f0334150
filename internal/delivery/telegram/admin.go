package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"forex-signals/pkg/logger"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handleGenerate(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID
	if !t.service.AccessService.IsAdmin(userID) {
		_, err := t.sender.Send(ctx, c, "This command is for the administrator only.")
		return err
	}

	payload := strings.TrimSpace(c.Message().Payload)
	days, err := strconv.Atoi(payload)
	if err != nil || days < 1 || days > 365 {
		_, sendErr := t.sender.Send(ctx, c, "Usage: `/generate <days>` (1-365)", &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		return sendErr
	}

	record, err := t.service.AccessService.IssueCode(ctx, days)
	if err != nil {
		t.log.ErrorContext(ctx, "failed to issue activation code", logger.ErrorField(err))
		return t.sendInternalError(ctx, c)
	}

	message := fmt.Sprintf("🔑 New activation code (valid %d days):\n\n`%s`", record.ValidDays, record.Code)
	_, err = t.sender.Send(ctx, c, message, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	return err
}

func (t *TelegramBotHandler) handleSetBalance(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	payload := strings.TrimSpace(c.Message().Payload)
	balance, err := strconv.ParseFloat(payload, 64)
	if err != nil || balance <= 0 {
		_, sendErr := t.sender.Send(ctx, c, "Usage: `/setbalance <amount>`, e.g. `/setbalance 250`", &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		return sendErr
	}

	if err := t.service.OutcomeService.SetBalance(ctx, userID, balance); err != nil {
		t.log.ErrorContext(ctx, "failed to set balance", logger.ErrorField(err))
		return t.sendInternalError(ctx, c)
	}

	quote := t.service.RiskSizer.Quote(balance, 0)
	message := fmt.Sprintf("💰 Balance set to $%.2f.\nYour base stake is now $%.2f (%.0f%%).", balance, quote.StakeAmount, quote.RiskPercent)
	_, err = t.sender.Send(ctx, c, message)
	return err
}
