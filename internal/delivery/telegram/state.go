package telegram

import (
	"fmt"

	"forex-signals/pkg/cache"
	"forex-signals/pkg/common"
)

// Conversation states for the reply-keyboard trading flow.
const (
	StateIdle = iota
	StateWaitingExpiry
	StateWaitingMarket
	StateWaitingResult
)

func (t *TelegramBotHandler) userState(userID int64) int {
	state, ok := cache.GetTyped[int](t.inmemoryCache, fmt.Sprintf(common.KeyUserState, userID))
	if !ok {
		return StateIdle
	}
	return state
}

func (t *TelegramBotHandler) setUserState(userID int64, state int) {
	t.inmemoryCache.Set(fmt.Sprintf(common.KeyUserState, userID), state, t.cfg.Telegram.StateExpDuration)
}

func (t *TelegramBotHandler) resetUserState(userID int64) {
	t.inmemoryCache.Delete(fmt.Sprintf(common.KeyUserState, userID))
}
