package model

import "time"

type ReferralStats struct {
	WalletAddress string
	Volume        int
	Diversity     int
	History       int
	Today         int
	Verified      bool
}

type ReferralStatus struct {
	WalletAddress  string
	XLinked        bool
	TelegramLinked bool
	Verified       bool
}

type ReferredUser struct {
	WalletAddress string
	XHandle       *string
	Points        int64
	Verified      bool
	JoinedAt      time.Time
}
