package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"forex-signals/config"
	"forex-signals/internal/model"
	"forex-signals/internal/repository"
	"forex-signals/pkg/logger"
	"forex-signals/pkg/utils"
)

const (
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength  = 8

	// Collisions in a 36^8 space are vanishingly rare; a bounded retry still
	// beats failing an admin command on one.
	codeIssueAttempts = 5
)

type AccessService interface {
	// EnsureUser registers a first-time user; repeat calls are no-ops.
	EnsureUser(ctx context.Context, telegramID int64, username, firstName, lastName string) error
	// HasAccess reports whether the user may request signals right now. The
	// subscription row is re-read on every call, never cached.
	HasAccess(ctx context.Context, telegramID int64) (bool, *model.Subscription, error)
	Activate(ctx context.Context, telegramID int64, code string) (*model.Subscription, error)
	IssueCode(ctx context.Context, days int) (*model.ActivationCode, error)
	IsAdmin(telegramID int64) bool
}

type accessService struct {
	cfg              *config.Config
	logger           *logger.Logger
	userRepo         repository.UserRepository
	subscriptionRepo repository.SubscriptionRepository
	codeRepo         repository.ActivationCodeRepository
	unitOfWork       repository.UnitOfWork
}

func NewAccessService(
	cfg *config.Config,
	log *logger.Logger,
	userRepo repository.UserRepository,
	subscriptionRepo repository.SubscriptionRepository,
	codeRepo repository.ActivationCodeRepository,
	unitOfWork repository.UnitOfWork,
) AccessService {
	return &accessService{
		cfg:              cfg,
		logger:           log,
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		codeRepo:         codeRepo,
		unitOfWork:       unitOfWork,
	}
}

func (s *accessService) IsAdmin(telegramID int64) bool {
	return telegramID == s.cfg.Telegram.AdminID
}

func (s *accessService) EnsureUser(ctx context.Context, telegramID int64, username, firstName, lastName string) error {
	existing, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil
	}

	user := &model.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		JoinedAt:   time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.InfoContext(ctx, "registered new user", logger.Int64Field("telegram_id", telegramID))
	return nil
}

func (s *accessService) HasAccess(ctx context.Context, telegramID int64) (bool, *model.Subscription, error) {
	if s.IsAdmin(telegramID) {
		return true, nil, nil
	}

	sub, err := s.subscriptionRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return false, nil, fmt.Errorf("failed to look up subscription: %w", err)
	}
	if sub == nil || !sub.Active(time.Now()) {
		return false, sub, nil
	}

	return true, sub, nil
}

// Activate consumes the code and upserts the subscription in one transaction.
// A valid but used code maps to ErrCodeAlreadyUsed, an unknown one to
// ErrInvalidCode.
func (s *accessService) Activate(ctx context.Context, telegramID int64, code string) (*model.Subscription, error) {
	var sub *model.Subscription

	err := s.unitOfWork.Run(func(opts ...utils.DBOption) error {
		record, err := s.codeRepo.GetByCode(ctx, code, opts...)
		if err != nil {
			return fmt.Errorf("failed to look up activation code: %w", err)
		}
		if record == nil {
			return ErrInvalidCode
		}
		if record.Used {
			return ErrCodeAlreadyUsed
		}

		consumed, err := s.codeRepo.MarkUsed(ctx, code, telegramID, opts...)
		if err != nil {
			return fmt.Errorf("failed to consume activation code: %w", err)
		}
		if !consumed {
			// Lost the race to a concurrent activation of the same code.
			return ErrCodeAlreadyUsed
		}

		sub = &model.Subscription{
			TelegramID: telegramID,
			ExpiresAt:  time.Now().AddDate(0, 0, record.ValidDays),
		}
		if err := s.subscriptionRepo.Upsert(ctx, sub, opts...); err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "subscription activated",
		logger.Int64Field("telegram_id", telegramID),
		logger.StringField("expires_at", sub.ExpiresAt.Format(time.RFC3339)))

	return sub, nil
}

func (s *accessService) IssueCode(ctx context.Context, days int) (*model.ActivationCode, error) {
	for attempt := 0; attempt < codeIssueAttempts; attempt++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate code: %w", err)
		}

		existing, err := s.codeRepo.GetByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if existing != nil {
			continue
		}

		record := &model.ActivationCode{
			Code:      code,
			ValidDays: days,
		}
		if err := s.codeRepo.Create(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to store activation code: %w", err)
		}

		return record, nil
	}

	return nil, fmt.Errorf("failed to generate a unique code after %d attempts", codeIssueAttempts)
}

func randomCode(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(codeCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = codeCharset[n.Int64()]
	}
	return string(out), nil
}
