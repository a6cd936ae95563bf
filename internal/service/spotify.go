package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vibin_quest_backend/internal/model"
	"vibin_quest_backend/internal/repository"

	"github.com/google/uuid"
)

type RewardsConfig struct {
	ClaimCooldown  time.Duration
	ClaimReward    int64
	ReferralReward int64
}

type SpotifyService struct {
	repo UserRepository
	cfg  RewardsConfig
	now  func() time.Time
}

func NewSpotifyService(repo UserRepository, cfg RewardsConfig) *SpotifyService {
	return &SpotifyService{
		repo: repo,
		cfg:  cfg,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// UserIdentifier carries either an email or a wallet address; wallet wins
// when both are set.
type UserIdentifier struct {
	Email         string
	WalletAddress string
}

type ListeningUpdate struct {
	WalletAddress    string
	SpotifyEmail     *string
	ListeningMinutes int
	TrackCount       int
	PendingPoints    int64
	ReferralCode     *string
}

// UpdateListening upserts the listening snapshot. A wallet seen for the
// first time gets a user row with a fresh referral code; a referral code
// in the request links the new user to its referrer.
func (s *SpotifyService) UpdateListening(ctx context.Context, update ListeningUpdate) (*model.User, error) {
	user, err := s.repo.GetUserByWallet(ctx, update.WalletAddress)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}

		user, err = s.registerUser(ctx, update)
		if err != nil {
			return nil, err
		}
		return user, nil
	}

	err = s.repo.UpdateListeningData(ctx, update.WalletAddress, update.ListeningMinutes, update.TrackCount, update.PendingPoints)
	if err != nil {
		return nil, fmt.Errorf("failed to update listening data: %w", err)
	}

	if update.SpotifyEmail != nil && user.SpotifyEmail == nil {
		if err := s.repo.SetSpotifyEmail(ctx, update.WalletAddress, *update.SpotifyEmail); err != nil {
			return nil, fmt.Errorf("failed to set spotify email: %w", err)
		}
	}

	return s.repo.GetUserByWallet(ctx, update.WalletAddress)
}

func (s *SpotifyService) registerUser(ctx context.Context, update ListeningUpdate) (*model.User, error) {
	var referrerWallet *string
	if update.ReferralCode != nil {
		referrer, err := s.repo.GetUserByReferralCode(ctx, *update.ReferralCode)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve referral code: %w", err)
		}
		if referrer != nil {
			referrerWallet = &referrer.WalletAddress
		}
	}

	user := &model.User{
		WalletAddress:    update.WalletAddress,
		SpotifyEmail:     update.SpotifyEmail,
		ReferralCode:     uuid.NewString(),
		ReferrerWallet:   referrerWallet,
		PendingPoints:    update.PendingPoints,
		ListeningMinutes: update.ListeningMinutes,
		TrackCount:       update.TrackCount,
		RegistrationDate: s.now(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return user, nil
}

func (s *SpotifyService) ClaimStatus(ctx context.Context, identifier UserIdentifier) (*model.ClaimStatus, error) {
	user, err := s.lookupUser(ctx, identifier)
	if err != nil {
		return nil, err
	}

	return s.computeClaimStatus(user), nil
}

func (s *SpotifyService) computeClaimStatus(user *model.User) *model.ClaimStatus {
	status := &model.ClaimStatus{
		WalletAddress: user.WalletAddress,
		PendingPoints: user.PendingPoints,
	}

	var remaining time.Duration
	if user.LastClaimDate != nil {
		next := user.LastClaimDate.Add(s.cfg.ClaimCooldown)
		status.NextClaimDate = &next
		if d := next.Sub(s.now()); d > 0 {
			remaining = d
		}
	}

	ms := remaining.Milliseconds()
	status.TimeUntilNextClaim = remaining
	status.CanClaim = remaining == 0
	status.DaysRemaining = ms / (24 * 60 * 60 * 1000)
	status.HoursRemaining = ms % (24 * 60 * 60 * 1000) / (60 * 60 * 1000)
	status.MinutesRemaining = ms % (60 * 60 * 1000) / (60 * 1000)

	return status
}

// Claim awards the pending balance plus the configured reward. The
// repository write is conditional on the last claim timestamp observed
// here, so a concurrent claim makes the second request fail instead of
// paying out twice.
func (s *SpotifyService) Claim(ctx context.Context, walletAddress string) (int64, error) {
	user, err := s.repo.GetUserByWallet(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	status := s.computeClaimStatus(user)
	if !status.CanClaim {
		return 0, ErrClaimNotAvailable
	}

	claimed, err := s.repo.ClaimPoints(ctx, walletAddress, s.cfg.ClaimReward, user.LastClaimDate, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrClaimConflict) {
			return 0, ErrClaimNotAvailable
		}
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	return claimed, nil
}

func (s *SpotifyService) Points(ctx context.Context, identifier UserIdentifier) (int64, error) {
	user, err := s.lookupUser(ctx, identifier)
	if err != nil {
		return 0, err
	}
	return user.Points, nil
}

func (s *SpotifyService) GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error) {
	user, err := s.repo.GetUserByWallet(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by wallet: %w", err)
	}
	return user, nil
}

func (s *SpotifyService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (s *SpotifyService) WaitlistIndex(ctx context.Context, email string) (int, error) {
	position, err := s.repo.GetWaitlistPosition(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrEmailNotFound
		}
		return 0, fmt.Errorf("failed to get waitlist position: %w", err)
	}
	return position, nil
}

func (s *SpotifyService) GetLeaderboard(ctx context.Context) ([]*model.LeaderboardEntry, error) {
	board, err := s.repo.GetTopUsers(ctx, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	return board, nil
}

func (s *SpotifyService) MarkReplyPosted(ctx context.Context, walletAddress string) error {
	err := s.repo.SetReplyPosted(ctx, walletAddress)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to mark reply posted: %w", err)
	}
	return nil
}

func (s *SpotifyService) lookupUser(ctx context.Context, identifier UserIdentifier) (*model.User, error) {
	var (
		user *model.User
		err  error
	)
	switch {
	case identifier.WalletAddress != "":
		user, err = s.repo.GetUserByWallet(ctx, identifier.WalletAddress)
	case identifier.Email != "":
		user, err = s.repo.GetUserByEmail(ctx, NormalizeEmail(identifier.Email))
	default:
		return nil, ErrUserNotFound
	}

	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}
