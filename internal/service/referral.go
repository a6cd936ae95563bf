package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vibin_quest_backend/internal/model"
	"vibin_quest_backend/internal/repository"
)

// TelegramVerifier confirms that a linked Telegram account actually joined
// the project channel. A nil verifier skips the live check and trusts the
// stored link flags.
type TelegramVerifier interface {
	IsChannelMember(ctx context.Context, telegramID int64) (bool, error)
}

type ReferralService struct {
	repo     ReferralRepository
	verifier TelegramVerifier
	reward   int64
	now      func() time.Time
}

func NewReferralService(repo ReferralRepository, verifier TelegramVerifier, reward int64) *ReferralService {
	return &ReferralService{
		repo:     repo,
		verifier: verifier,
		reward:   reward,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ReferralService) LinkAccounts(ctx context.Context, walletAddress string, xHandle, telegramHandle *string, telegramID *int64) (*model.ReferralStatus, error) {
	if xHandle == nil && telegramHandle == nil && telegramID == nil {
		return nil, ErrNothingToUpdate
	}

	err := s.repo.SetSocialHandles(ctx, walletAddress, xHandle, telegramHandle, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to link accounts: %w", err)
	}

	return s.Status(ctx, walletAddress)
}

func (s *ReferralService) Status(ctx context.Context, walletAddress string) (*model.ReferralStatus, error) {
	user, err := s.repo.GetUserByWallet(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &model.ReferralStatus{
		WalletAddress:  user.WalletAddress,
		XLinked:        user.XHandle != nil && *user.XHandle != "",
		TelegramLinked: user.TelegramHandle != nil && *user.TelegramHandle != "",
		Verified:       user.ReferralVerified,
	}, nil
}

// Verify checks the linked social accounts and awards the one-time bonus
// to both the referred wallet and its referrer. Repeat calls after a
// successful award return the current stats unchanged.
func (s *ReferralService) Verify(ctx context.Context, walletAddress string) (*model.ReferralStats, error) {
	user, err := s.repo.GetUserByWallet(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ReferralVerified {
		return s.Stats(ctx, walletAddress)
	}

	xLinked := user.XHandle != nil && *user.XHandle != ""
	telegramLinked := user.TelegramHandle != nil && *user.TelegramHandle != ""
	if !xLinked || !telegramLinked {
		return nil, ErrAccountsNotLinked
	}

	if s.verifier != nil && user.TelegramID != nil {
		member, err := s.verifier.IsChannelMember(ctx, *user.TelegramID)
		if err != nil {
			return nil, fmt.Errorf("failed to verify telegram membership: %w", err)
		}
		if !member {
			return nil, ErrAccountsNotLinked
		}
	}

	err = s.repo.AwardReferralBonus(ctx, walletAddress, s.reward, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyVerified):
			// lost the race to a concurrent verify; the award happened once
		case errors.Is(err, repository.ErrNoReferrer):
			return nil, ErrNoReferrer
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		default:
			return nil, fmt.Errorf("failed to award referral bonus: %w", err)
		}
	}

	return s.Stats(ctx, walletAddress)
}

func (s *ReferralService) Stats(ctx context.Context, walletAddress string) (*model.ReferralStats, error) {
	stats, err := s.repo.GetReferralStats(ctx, walletAddress, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get referral stats: %w", err)
	}
	return stats, nil
}

func (s *ReferralService) ListReferred(ctx context.Context, walletAddress string) ([]*model.ReferredUser, error) {
	referred, err := s.repo.GetReferredUsers(ctx, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get referred users: %w", err)
	}
	return referred, nil
}
