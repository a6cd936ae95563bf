package service

import (
	"context"
	"errors"
	"time"

	"vibin_quest_backend/internal/model"
)

var (
	ErrClaimNotAvailable = errors.New("the claim cooldown has not yet elapsed")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailNotFound     = errors.New("email not found")
	ErrAccountsNotLinked = errors.New("required social accounts are not linked")
	ErrNoReferrer        = errors.New("wallet has no referrer")
	ErrNothingToUpdate   = errors.New("nothing to update")
)

type Service struct {
	*SpotifyService
	*ReferralService
	*WaitlistService
}

func NewService(spotify *SpotifyService, referral *ReferralService, waitlist *WaitlistService) *Service {
	return &Service{
		SpotifyService:  spotify,
		ReferralService: referral,
		WaitlistService: waitlist,
	}
}

type SpotifyServiceI interface {
	UpdateListening(ctx context.Context, update ListeningUpdate) (*model.User, error)
	ClaimStatus(ctx context.Context, identifier UserIdentifier) (*model.ClaimStatus, error)
	Claim(ctx context.Context, walletAddress string) (int64, error)
	Points(ctx context.Context, identifier UserIdentifier) (int64, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	WaitlistIndex(ctx context.Context, email string) (int, error)
	GetLeaderboard(ctx context.Context) ([]*model.LeaderboardEntry, error)
	MarkReplyPosted(ctx context.Context, walletAddress string) error
}

type ReferralServiceI interface {
	LinkAccounts(ctx context.Context, walletAddress string, xHandle, telegramHandle *string, telegramID *int64) (*model.ReferralStatus, error)
	Verify(ctx context.Context, walletAddress string) (*model.ReferralStats, error)
	Status(ctx context.Context, walletAddress string) (*model.ReferralStatus, error)
	Stats(ctx context.Context, walletAddress string) (*model.ReferralStats, error)
	ListReferred(ctx context.Context, walletAddress string) ([]*model.ReferredUser, error)
}

type WaitlistServiceI interface {
	Signup(ctx context.Context, email string) (int, error)
	List(ctx context.Context) ([]*model.WaitlistEntry, error)
	Delete(ctx context.Context, email string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*model.User, error)
	UpdateListeningData(ctx context.Context, walletAddress string, minutes, tracks int, pendingDelta int64) error
	SetSpotifyEmail(ctx context.Context, walletAddress, email string) error
	ClaimPoints(ctx context.Context, walletAddress string, reward int64, observedLastClaim *time.Time, now time.Time) (int64, error)
	GetWaitlistPosition(ctx context.Context, email string) (int, error)
	GetTopUsers(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
	SetReplyPosted(ctx context.Context, walletAddress string) error
}

type ReferralRepository interface {
	GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error)
	SetSocialHandles(ctx context.Context, walletAddress string, xHandle, telegramHandle *string, telegramID *int64) error
	AwardReferralBonus(ctx context.Context, referredWallet string, amount int64, now time.Time) error
	GetReferralStats(ctx context.Context, walletAddress string, now time.Time) (*model.ReferralStats, error)
	GetReferredUsers(ctx context.Context, walletAddress string) ([]*model.ReferredUser, error)
}

type WaitlistRepository interface {
	AddWaitlistEmail(ctx context.Context, email string) (int, error)
	ListWaitlistEmails(ctx context.Context) ([]*model.WaitlistEntry, error)
	DeleteWaitlistEmail(ctx context.Context, email string) error
}
