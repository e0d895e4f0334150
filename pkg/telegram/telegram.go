package telegram

import (
	"context"
	"sync"
	"time"

	"forex-signals/config"
	"forex-signals/pkg/logger"
	"forex-signals/pkg/utils"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

type userLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimitedSender wraps the bot with a global limiter plus one limiter per
// user, so a burst of signal requests from one subscriber cannot starve the
// rest of the send queue.
type RateLimitedSender struct {
	cfg           *config.TelegramConfig
	log           *logger.Logger
	bot           *telebot.Bot
	globalLimiter *rate.Limiter
	userLimiters  map[int64]*userLimiterEntry
	mu            sync.Mutex
	wg            sync.WaitGroup
}

func NewRateLimitedSender(cfg *config.TelegramConfig, log *logger.Logger, bot *telebot.Bot) *RateLimitedSender {
	return &RateLimitedSender{
		cfg:           cfg,
		log:           log,
		bot:           bot,
		globalLimiter: rate.NewLimiter(rate.Limit(cfg.MaxGlobalRequestPerSecond), cfg.MaxGlobalRequestPerSecond),
		userLimiters:  make(map[int64]*userLimiterEntry),
	}
}

func (s *RateLimitedSender) Send(ctx context.Context, c telebot.Context, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if err := s.wait(ctx, c.Sender().ID); err != nil {
		return nil, err
	}
	return s.bot.Send(c.Chat(), what, opts...)
}

// SendToUser delivers a message outside a handler context, e.g. from a
// scheduler job.
func (s *RateLimitedSender) SendToUser(ctx context.Context, userID int64, what interface{}, opts ...interface{}) error {
	if err := s.wait(ctx, userID); err != nil {
		return err
	}
	_, err := s.bot.Send(&telebot.User{ID: userID}, what, opts...)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to send message to user",
			logger.ErrorField(err),
			logger.Int64Field("user_id", userID),
		)
	}
	return err
}

func (s *RateLimitedSender) Edit(ctx context.Context, c telebot.Context, msg *telebot.Message, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if err := s.wait(ctx, c.Sender().ID); err != nil {
		return nil, err
	}
	return s.bot.Edit(msg, what, opts...)
}

func (s *RateLimitedSender) Respond(ctx context.Context, c telebot.Context, resp ...*telebot.CallbackResponse) error {
	if err := s.wait(ctx, c.Sender().ID); err != nil {
		return err
	}
	return c.Respond(resp...)
}

func (s *RateLimitedSender) wait(ctx context.Context, userID int64) error {
	entry := s.getUserLimiter(userID)

	if err := s.globalLimiter.Wait(ctx); err != nil {
		s.log.ErrorContext(ctx, "Failed to wait for global rate limit", logger.ErrorField(err))
		return err
	}
	if err := entry.limiter.Wait(ctx); err != nil {
		s.log.ErrorContext(ctx, "Failed to wait for user rate limit", logger.ErrorField(err))
		return err
	}
	return nil
}

func (s *RateLimitedSender) getUserLimiter(userID int64) *userLimiterEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, exists := s.userLimiters[userID]; exists {
		entry.lastAccess = time.Now()
		return entry
	}

	entry := &userLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.cfg.MaxUserRequestPerSecond), s.cfg.MaxUserRequestPerSecond),
		lastAccess: time.Now(),
	}
	s.userLimiters[userID] = entry
	return entry
}

// StartCleanupExpired drops per-user limiters that have been idle longer than
// the configured expiry.
func (s *RateLimitedSender) StartCleanupExpired(ctx context.Context) {
	s.wg.Add(1)
	utils.GoSafe(func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.RateLimitCleanupDuration)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log.Info("Stopping Telegram rate limiter cleanup")
				return
			case <-ticker.C:
				s.mu.Lock()
				now := time.Now()
				for userID, entry := range s.userLimiters {
					if now.Sub(entry.lastAccess) > s.cfg.RatelimitExpireDuration {
						delete(s.userLimiters, userID)
					}
				}
				s.mu.Unlock()
			}
		}
	})
}

func (s *RateLimitedSender) StopCleanupExpired() {
	s.wg.Wait()
	s.log.Info("Telegram rate limiter stopped")
}
