package service

import (
	"context"
	"testing"
	"time"

	"vibin_quest_backend/internal/model"
	"vibin_quest_backend/internal/repository"
	"vibin_quest_backend/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	member bool
	err    error
	calls  int
}

func (f *fakeVerifier) IsChannelMember(context.Context, int64) (bool, error) {
	f.calls++
	return f.member, f.err
}

func strPtr(s string) *string {
	return &s
}

func int64Ptr(i int64) *int64 {
	return &i
}

func linkedUser() *model.User {
	return &model.User{
		WalletAddress:  testWallet,
		XHandle:        strPtr("vibin_fan"),
		TelegramHandle: strPtr("vibin_fan_tg"),
		TelegramID:     int64Ptr(5060715466),
		ReferrerWallet: strPtr("0xreferrer"),
	}
}

func newTestReferralService(repo *mocks.MockReferralRepository, verifier TelegramVerifier, now time.Time) *ReferralService {
	s := NewReferralService(repo, verifier, 250)
	s.now = func() time.Time { return now }
	return s
}

func TestReferralService_Verify(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	stats := &model.ReferralStats{
		WalletAddress: testWallet,
		Volume:        1,
		History:       250,
		Today:         250,
		Verified:      true,
	}

	tests := []struct {
		name          string
		setupMocks    func(*mocks.MockReferralRepository)
		verifier      *fakeVerifier
		expectedError error
		expectAward   bool
	}{
		{
			name: "Wallet not found",
			setupMocks: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetUserByWallet", mock.Anything, testWallet).
					Return(nil, repository.ErrNotFound)
			},
			expectedError: ErrUserNotFound,
		},
		{
			name: "Accounts not linked",
			setupMocks: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetUserByWallet", mock.Anything, testWallet).
					Return(&model.User{
						WalletAddress: testWallet,
						XHandle:       strPtr("vibin_fan"),
					}, nil)
			},
			expectedError: ErrAccountsNotLinked,
		},
		{
			name: "Already verified is a no-op returning stats",
			setupMocks: func(mockRepo *mocks.MockReferralRepository) {
				user := linkedUser()
				user.ReferralVerified = true
				mockRepo.On("GetUserByWallet", mock.Anything, testWallet).
					Return(user, nil)
				mockRepo.On("GetReferralStats", mock.Anything, testWallet, now).
					Return(stats, nil)
			},
		},
		{
			name: "First verification awards the bonus",
			setupMocks: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetUserByWallet", mock.Anything, testWallet).
					Return(linkedUser(), nil)
				mockRepo.On("AwardReferralBonus", mock.Anything, testWallet, int64(250), now).
					Return(nil)
				mockRepo.On("GetReferralStats", mock.Anything, testWallet, now).
					Return(stats, nil)
			},
			expectAward: true,
		},
		{
			name: "Losing a concurrent verify still succeeds",
			setupMocks: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetUserByWallet", mock.Anything, testWallet).
					Return(linkedUser(), nil)
				mockRepo.On("AwardReferralBonus", mock.Anything, testWallet, int64(250), now).
					Return(repository.ErrAlreadyVerified)
				mockRepo.On("GetReferralStats", mock.Anything, testWallet, now).
					Return(stats, nil)
			},
			expectAward: true,
		},
		{
			name: "No referrer",
			setupMocks: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetUserByWallet", mock.Anything, testWallet).
					Return(linkedUser(), nil)
				mockRepo.On("AwardReferralBonus", mock.Anything, testWallet, int64(250), now).
					Return(repository.ErrNoReferrer)
			},
			expectedError: ErrNoReferrer,
			expectAward:   true,
		},
		{
			name: "Telegram membership check fails the verification",
			setupMocks: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetUserByWallet", mock.Anything, testWallet).
					Return(linkedUser(), nil)
			},
			verifier:      &fakeVerifier{member: false},
			expectedError: ErrAccountsNotLinked,
		},
		{
			name: "Telegram membership check passes",
			setupMocks: func(mockRepo *mocks.MockReferralRepository) {
				mockRepo.On("GetUserByWallet", mock.Anything, testWallet).
					Return(linkedUser(), nil)
				mockRepo.On("AwardReferralBonus", mock.Anything, testWallet, int64(250), now).
					Return(nil)
				mockRepo.On("GetReferralStats", mock.Anything, testWallet, now).
					Return(stats, nil)
			},
			verifier:    &fakeVerifier{member: true},
			expectAward: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockReferralRepository{}
			tt.setupMocks(mockRepo)

			var verifier TelegramVerifier
			if tt.verifier != nil {
				verifier = tt.verifier
			}
			s := newTestReferralService(mockRepo, verifier, now)

			result, err := s.Verify(context.Background(), testWallet)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				if !tt.expectAward {
					mockRepo.AssertNotCalled(t, "AwardReferralBonus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, stats, result)
			}

			if tt.verifier != nil {
				assert.Equal(t, 1, tt.verifier.calls)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestReferralService_LinkAccounts(t *testing.T) {
	mockRepo := &mocks.MockReferralRepository{}
	xHandle := strPtr("vibin_fan")

	mockRepo.On("SetSocialHandles", mock.Anything, testWallet, xHandle, (*string)(nil), (*int64)(nil)).
		Return(nil)
	mockRepo.On("GetUserByWallet", mock.Anything, testWallet).
		Return(&model.User{
			WalletAddress: testWallet,
			XHandle:       xHandle,
		}, nil)

	s := newTestReferralService(mockRepo, nil, time.Now().UTC())

	status, err := s.LinkAccounts(context.Background(), testWallet, xHandle, nil, nil)
	require.NoError(t, err)
	assert.True(t, status.XLinked)
	assert.False(t, status.TelegramLinked)
	assert.False(t, status.Verified)

	_, err = s.LinkAccounts(context.Background(), testWallet, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNothingToUpdate)

	mockRepo.AssertExpectations(t)
}

func TestReferralService_Status(t *testing.T) {
	mockRepo := &mocks.MockReferralRepository{}
	mockRepo.On("GetUserByWallet", mock.Anything, testWallet).
		Return(linkedUser(), nil)

	s := newTestReferralService(mockRepo, nil, time.Now().UTC())

	status, err := s.Status(context.Background(), testWallet)
	require.NoError(t, err)
	assert.True(t, status.XLinked)
	assert.True(t, status.TelegramLinked)
	assert.False(t, status.Verified)
}
