package model

import "time"

type User struct {
	WalletAddress    string
	SpotifyEmail     *string
	XHandle          *string
	TelegramHandle   *string
	TelegramID       *int64
	ReferralCode     string
	ReferrerWallet   *string
	Points           int64
	PendingPoints    int64
	LastClaimDate    *time.Time
	ReferralVerified bool
	ReplyPosted      bool
	ListeningMinutes int
	TrackCount       int
	RegistrationDate time.Time
}

type LeaderboardEntry struct {
	WalletAddress string
	XHandle       *string
	Points        int64
	Referrals     int
}
