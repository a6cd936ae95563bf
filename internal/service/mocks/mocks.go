package mocks

import (
	"context"
	"time"

	"vibin_quest_backend/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateListeningData(ctx context.Context, walletAddress string, minutes, tracks int, pendingDelta int64) error {
	args := m.Called(ctx, walletAddress, minutes, tracks, pendingDelta)
	return args.Error(0)
}

func (m *MockUserRepository) SetSpotifyEmail(ctx context.Context, walletAddress, email string) error {
	args := m.Called(ctx, walletAddress, email)
	return args.Error(0)
}

func (m *MockUserRepository) ClaimPoints(ctx context.Context, walletAddress string, reward int64, observedLastClaim *time.Time, now time.Time) (int64, error) {
	args := m.Called(ctx, walletAddress, reward, observedLastClaim, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetWaitlistPosition(ctx context.Context, email string) (int, error) {
	args := m.Called(ctx, email)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) GetTopUsers(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LeaderboardEntry), args.Error(1)
}

func (m *MockUserRepository) SetReplyPosted(ctx context.Context, walletAddress string) error {
	args := m.Called(ctx, walletAddress)
	return args.Error(0)
}

type MockReferralRepository struct {
	mock.Mock
}

func (m *MockReferralRepository) GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockReferralRepository) SetSocialHandles(ctx context.Context, walletAddress string, xHandle, telegramHandle *string, telegramID *int64) error {
	args := m.Called(ctx, walletAddress, xHandle, telegramHandle, telegramID)
	return args.Error(0)
}

func (m *MockReferralRepository) AwardReferralBonus(ctx context.Context, referredWallet string, amount int64, now time.Time) error {
	args := m.Called(ctx, referredWallet, amount, now)
	return args.Error(0)
}

func (m *MockReferralRepository) GetReferralStats(ctx context.Context, walletAddress string, now time.Time) (*model.ReferralStats, error) {
	args := m.Called(ctx, walletAddress, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReferralStats), args.Error(1)
}

func (m *MockReferralRepository) GetReferredUsers(ctx context.Context, walletAddress string) ([]*model.ReferredUser, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ReferredUser), args.Error(1)
}

type MockWaitlistRepository struct {
	mock.Mock
}

func (m *MockWaitlistRepository) AddWaitlistEmail(ctx context.Context, email string) (int, error) {
	args := m.Called(ctx, email)
	return args.Int(0), args.Error(1)
}

func (m *MockWaitlistRepository) ListWaitlistEmails(ctx context.Context) ([]*model.WaitlistEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WaitlistEntry), args.Error(1)
}

func (m *MockWaitlistRepository) DeleteWaitlistEmail(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}
