package telegram

import (
	"context"
	"fmt"
	"strings"

	"forex-signals/pkg/logger"
	"forex-signals/pkg/utils"

	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) handleActivate(ctx context.Context, c telebot.Context) error {
	userID := c.Sender().ID

	code := strings.ToUpper(strings.TrimSpace(c.Message().Payload))
	if code == "" {
		_, err := t.sender.Send(ctx, c, "Usage: `/activate YOURCODE`", &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		return err
	}

	sub, err := t.service.AccessService.Activate(ctx, userID, code)
	if err != nil {
		if reply, known := replyForError(err); known {
			_, sendErr := t.sender.Send(ctx, c, reply)
			return sendErr
		}
		t.log.ErrorContext(ctx, "activation failed", logger.ErrorField(err))
		return t.sendInternalError(ctx, c)
	}

	message := fmt.Sprintf("🎉 *Subscription activated!*\n\nYour access runs until *%s*.\nTap *Start Trading* to request your first signal.",
		utils.PrettyDate(sub.ExpiresAt))
	_, err = t.sender.Send(ctx, c, message, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}, mainMenu())
	return err
}
