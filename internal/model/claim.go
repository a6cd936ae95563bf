package model

import "time"

// ClaimStatus is derived from the user's last claim timestamp and the
// configured cooldown window; it is never persisted.
type ClaimStatus struct {
	WalletAddress      string
	CanClaim           bool
	NextClaimDate      *time.Time
	TimeUntilNextClaim time.Duration
	DaysRemaining      int64
	HoursRemaining     int64
	MinutesRemaining   int64
	PendingPoints      int64
}
