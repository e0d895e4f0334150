package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"forex-signals/config"
	"forex-signals/internal/model"
	"forex-signals/pkg/logger"
	"forex-signals/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[int64]*model.User
}

func (f *fakeUserRepo) GetByTelegramID(_ context.Context, telegramID int64, _ ...utils.DBOption) (*model.User, error) {
	u, ok := f.users[telegramID]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User, _ ...utils.DBOption) error {
	f.users[user.TelegramID] = user
	return nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fakeSubscriptionRepo struct {
	subs map[int64]*model.Subscription
}

func (f *fakeSubscriptionRepo) GetByTelegramID(_ context.Context, telegramID int64, _ ...utils.DBOption) (*model.Subscription, error) {
	s, ok := f.subs[telegramID]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSubscriptionRepo) Upsert(_ context.Context, sub *model.Subscription, _ ...utils.DBOption) error {
	f.subs[sub.TelegramID] = sub
	return nil
}

func (f *fakeSubscriptionRepo) FindExpiringBetween(_ context.Context, from, to time.Time) ([]model.Subscription, error) {
	var out []model.Subscription
	for _, s := range f.subs {
		if s.ExpiresAt.After(from) && !s.ExpiresAt.After(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeCodeRepo struct {
	codes map[string]*model.ActivationCode
}

func (f *fakeCodeRepo) Create(_ context.Context, code *model.ActivationCode, _ ...utils.DBOption) error {
	f.codes[code.Code] = code
	return nil
}

func (f *fakeCodeRepo) GetByCode(_ context.Context, code string, _ ...utils.DBOption) (*model.ActivationCode, error) {
	c, ok := f.codes[code]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCodeRepo) MarkUsed(_ context.Context, code string, telegramID int64, _ ...utils.DBOption) (bool, error) {
	c, ok := f.codes[code]
	if !ok || c.Used {
		return false, nil
	}
	now := time.Now()
	c.Used = true
	c.UsedBy = &telegramID
	c.UsedAt = &now
	return true, nil
}

// fakeUnitOfWork runs the callback without a transaction; the fakes it wraps
// are plain maps.
type fakeUnitOfWork struct{}

func (fakeUnitOfWork) Begin() *gorm.DB { return nil }
func (fakeUnitOfWork) Commit() error { return nil }
func (fakeUnitOfWork) Rollback() error { return nil }

func (fakeUnitOfWork) Run(fn func(opts ...utils.DBOption) error) error {
	return fn()
}

func newAccessFixture(t *testing.T) (AccessService, *fakeSubscriptionRepo, *fakeCodeRepo) {
	t.Helper()

	log, err := logger.New("error", "console")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Telegram.AdminID = 9999

	subs := &fakeSubscriptionRepo{subs: make(map[int64]*model.Subscription)}
	codes := &fakeCodeRepo{codes: make(map[string]*model.ActivationCode)}
	users := &fakeUserRepo{users: make(map[int64]*model.User)}

	svc := NewAccessService(cfg, log, users, subs, codes, fakeUnitOfWork{})
	return svc, subs, codes
}

func TestActivate_RoundTrip(t *testing.T) {
	svc, subs, codes := newAccessFixture(t)
	ctx := context.Background()

	codes.codes["WELCOME1"] = &model.ActivationCode{Code: "WELCOME1", ValidDays: 30}

	sub, err := svc.Activate(ctx, 42, "WELCOME1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), sub.TelegramID)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), sub.ExpiresAt, time.Minute)

	allowed, _, err := svc.HasAccess(ctx, 42)
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NotNil(t, subs.subs[42])
	assert.True(t, codes.codes["WELCOME1"].Used)
}

func TestActivate_UnknownCode(t *testing.T) {
	svc, _, _ := newAccessFixture(t)

	_, err := svc.Activate(context.Background(), 42, "NOPE1234")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestActivate_DoubleConsume(t *testing.T) {
	svc, _, codes := newAccessFixture(t)
	ctx := context.Background()

	codes.codes["ONCEONLY"] = &model.ActivationCode{Code: "ONCEONLY", ValidDays: 7}

	_, err := svc.Activate(ctx, 42, "ONCEONLY")
	require.NoError(t, err)

	_, err = svc.Activate(ctx, 43, "ONCEONLY")
	assert.ErrorIs(t, err, ErrCodeAlreadyUsed)

	allowed, _, err := svc.HasAccess(ctx, 43)
	require.NoError(t, err)
	assert.False(t, allowed, "second user must gain nothing from a consumed code")
}

func TestHasAccess_ExpiredSubscription(t *testing.T) {
	svc, subs, _ := newAccessFixture(t)

	subs.subs[42] = &model.Subscription{TelegramID: 42, ExpiresAt: time.Now().Add(-time.Hour)}

	allowed, _, err := svc.HasAccess(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestHasAccess_AdminBypass(t *testing.T) {
	svc, _, _ := newAccessFixture(t)

	allowed, _, err := svc.HasAccess(context.Background(), 9999)
	require.NoError(t, err)
	assert.True(t, allowed, "admin needs no subscription row")
}

func TestIssueCode_Format(t *testing.T) {
	svc, _, codes := newAccessFixture(t)

	record, err := svc.IssueCode(context.Background(), 14)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{8}$`), record.Code)
	assert.Equal(t, 14, record.ValidDays)
	assert.False(t, record.Used)
	assert.Contains(t, codes.codes, record.Code)
}

func TestActivate_RenewalOverwritesExpiry(t *testing.T) {
	svc, subs, codes := newAccessFixture(t)
	ctx := context.Background()

	subs.subs[42] = &model.Subscription{TelegramID: 42, ExpiresAt: time.Now().Add(-time.Hour)}
	codes.codes["RENEW123"] = &model.ActivationCode{Code: "RENEW123", ValidDays: 7}

	sub, err := svc.Activate(ctx, 42, "RENEW123")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), sub.ExpiresAt, time.Minute)
}
