package service

import (
	"context"
	"fmt"
	"time"

	"forex-signals/config"
	"forex-signals/internal/repository"
	"forex-signals/pkg/logger"
	"forex-signals/pkg/telegram"
	"forex-signals/pkg/utils"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
	// RemindExpiringSubscriptions messages every subscriber whose access
	// lapses within the configured window.
	RemindExpiringSubscriptions(ctx context.Context) error
	// CleanupSignalLog deletes signal rows older than the retention period.
	CleanupSignalLog(ctx context.Context) error
}

type schedulerService struct {
	cfg              *config.Config
	log              *logger.Logger
	cron             *cron.Cron
	subscriptionRepo repository.SubscriptionRepository
	signalRepo       repository.SignalRepository
	sender           *telegram.RateLimitedSender
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	subscriptionRepo repository.SubscriptionRepository,
	signalRepo repository.SignalRepository,
	sender *telegram.RateLimitedSender,
) SchedulerService {
	return &schedulerService{
		cfg:              cfg,
		log:              log,
		cron:             cron.New(),
		subscriptionRepo: subscriptionRepo,
		signalRepo:       signalRepo,
		sender:           sender,
	}
}

func (s *schedulerService) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.Scheduler.ExpiryReminderCron, func() {
		s.runJob(ctx, "expiry_reminder", s.RemindExpiringSubscriptions)
	}); err != nil {
		return fmt.Errorf("failed to schedule expiry reminder: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.Scheduler.SignalCleanupCron, func() {
		s.runJob(ctx, "signal_cleanup", s.CleanupSignalLog)
	}); err != nil {
		return fmt.Errorf("failed to schedule signal cleanup: %w", err)
	}

	s.cron.Start()
	s.log.Info("scheduler started",
		logger.StringField("expiry_reminder_cron", s.cfg.Scheduler.ExpiryReminderCron),
		logger.StringField("signal_cleanup_cron", s.cfg.Scheduler.SignalCleanupCron))
	return nil
}

func (s *schedulerService) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

func (s *schedulerService) runJob(ctx context.Context, name string, job func(context.Context) error) {
	jobCtx, cancel := context.WithTimeout(ctx, s.cfg.Scheduler.TimeoutDuration)
	defer cancel()

	start := time.Now()
	if err := job(jobCtx); err != nil {
		s.log.ErrorContext(jobCtx, "scheduled job failed",
			logger.StringField("job", name),
			logger.ErrorField(err))
		return
	}

	s.log.InfoContext(jobCtx, "scheduled job completed",
		logger.StringField("job", name),
		logger.StringField("duration", time.Since(start).String()))
}

func (s *schedulerService) RemindExpiringSubscriptions(ctx context.Context) error {
	now := time.Now()
	subs, err := s.subscriptionRepo.FindExpiringBetween(ctx, now, now.Add(s.cfg.Scheduler.ExpiryReminderAhead))
	if err != nil {
		return fmt.Errorf("failed to find expiring subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Scheduler.MaxConcurrency)

	for _, sub := range subs {
		g.Go(func() error {
			if !utils.ShouldContinue(gCtx, s.log) {
				return gCtx.Err()
			}

			msg := fmt.Sprintf(
				"⏳ Your subscription expires on %s.\nSend /activate with a new code to keep receiving signals.",
				utils.PrettyDate(sub.ExpiresAt),
			)
			if err := s.sender.SendToUser(gCtx, sub.TelegramID, msg); err != nil {
				s.log.WarnContext(gCtx, "failed to send expiry reminder",
					logger.Int64Field("telegram_id", sub.TelegramID),
					logger.ErrorField(err))
			}
			return nil
		})
	}

	return g.Wait()
}

func (s *schedulerService) CleanupSignalLog(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.Scheduler.SignalRetentionDays)
	deleted, err := s.signalRepo.DeleteIssuedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete old signals: %w", err)
	}

	if deleted > 0 {
		s.log.InfoContext(ctx, "signal log cleaned up",
			logger.Int64Field("deleted", deleted),
			logger.StringField("cutoff", utils.DateOnly(cutoff)))
	}
	return nil
}
