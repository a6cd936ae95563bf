package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vibin_quest_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type User struct {
	WalletAddress    string     `db:"wallet_address"`
	SpotifyEmail     *string    `db:"spotify_email"`
	XHandle          *string    `db:"x_handle"`
	TelegramHandle   *string    `db:"telegram_handle"`
	TelegramID       *int64     `db:"telegram_id"`
	ReferralCode     string     `db:"referral_code"`
	ReferrerWallet   *string    `db:"referrer_wallet"`
	Points           int64      `db:"points"`
	PendingPoints    int64      `db:"pending_points"`
	LastClaimDate    *time.Time `db:"last_claim_date"`
	ReferralVerified bool       `db:"referral_verified"`
	ReplyPosted      bool       `db:"reply_posted"`
	ListeningMinutes int        `db:"listening_minutes"`
	TrackCount       int        `db:"track_count"`
	ScoreVolume      int        `db:"score_volume"`
	ScoreDiversity   int        `db:"score_diversity"`
	ScoreHistory     int        `db:"score_history"`
	ScoreToday       int        `db:"score_today"`
	LastReferralAt   *time.Time `db:"last_referral_at"`
	RegistrationDate time.Time  `db:"registration_date"`
}

type leaderboardEntry struct {
	WalletAddress string  `db:"wallet_address"`
	XHandle       *string `db:"x_handle"`
	Points        int64   `db:"points"`
	Referrals     int     `db:"referrals"`
}

func (u *User) toModel() *model.User {
	return &model.User{
		WalletAddress:    u.WalletAddress,
		SpotifyEmail:     u.SpotifyEmail,
		XHandle:          u.XHandle,
		TelegramHandle:   u.TelegramHandle,
		TelegramID:       u.TelegramID,
		ReferralCode:     u.ReferralCode,
		ReferrerWallet:   u.ReferrerWallet,
		Points:           u.Points,
		PendingPoints:    u.PendingPoints,
		LastClaimDate:    u.LastClaimDate,
		ReferralVerified: u.ReferralVerified,
		ReplyPosted:      u.ReplyPosted,
		ListeningMinutes: u.ListeningMinutes,
		TrackCount:       u.TrackCount,
		RegistrationDate: u.RegistrationDate,
	}
}

func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"wallet_address":    user.WalletAddress,
			"spotify_email":     user.SpotifyEmail,
			"x_handle":          user.XHandle,
			"telegram_handle":   user.TelegramHandle,
			"referral_code":     user.ReferralCode,
			"referrer_wallet":   user.ReferrerWallet,
			"points":            user.Points,
			"pending_points":    user.PendingPoints,
			"listening_minutes": user.ListeningMinutes,
			"track_count":       user.TrackCount,
			"registration_date": user.RegistrationDate,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *Repository) GetUserByWallet(ctx context.Context, walletAddress string) (*model.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"wallet_address": walletAddress})
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"spotify_email": email})
}

func (r *Repository) GetUserByReferralCode(ctx context.Context, code string) (*model.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"referral_code": code})
}

func (r *Repository) getUserWhere(ctx context.Context, cond squirrel.Eq) (*model.User, error) {
	var user User
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(cond).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return user.toModel(), nil
}

func (r *Repository) getUserWithTx(ctx context.Context, tx *sqlx.Tx, walletAddress string) (*User, error) {
	var user User
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"wallet_address": walletAddress}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = tx.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

// UpdateListeningData replaces the listening snapshot and accumulates
// pending points earned since the previous update.
func (r *Repository) UpdateListeningData(ctx context.Context, walletAddress string, minutes, tracks int, pendingDelta int64) error {
	query, args, err := squirrel.
		Update("users").
		SetMap(map[string]interface{}{
			"listening_minutes": minutes,
			"track_count":       tracks,
		}).
		Set("pending_points", squirrel.Expr("pending_points + ?", pendingDelta)).
		Where(squirrel.Eq{"wallet_address": walletAddress}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update listening data: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) SetSpotifyEmail(ctx context.Context, walletAddress, email string) error {
	query, args, err := squirrel.
		Update("users").
		Set("spotify_email", email).
		Where(squirrel.Eq{"wallet_address": walletAddress}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set spotify email: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ClaimPoints moves the pending balance (plus the claim reward) into the
// point balance and stamps last_claim_date. The update is conditional on
// last_claim_date still holding the value the caller observed, so two
// concurrent claims for the same wallet cannot both succeed.
func (r *Repository) ClaimPoints(ctx context.Context, walletAddress string, reward int64, observedLastClaim *time.Time, now time.Time) (int64, error) {
	var claimed int64
	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		user, err := r.getUserWithTx(ctx, tx, walletAddress)
		if err != nil {
			return err
		}
		claimed = user.PendingPoints + reward

		// an untyped nil makes squirrel render IS NULL; a typed nil
		// pointer would render "= NULL" and never match
		cond := squirrel.And{squirrel.Eq{"wallet_address": walletAddress}}
		if observedLastClaim == nil {
			cond = append(cond, squirrel.Eq{"last_claim_date": nil})
		} else {
			cond = append(cond, squirrel.Eq{"last_claim_date": *observedLastClaim})
		}

		query, args, err := squirrel.
			Update("users").
			Set("points", squirrel.Expr("points + pending_points + ?", reward)).
			Set("pending_points", 0).
			Set("last_claim_date", now).
			Where(cond).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrClaimConflict
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return claimed, nil
}

func (r *Repository) SetSocialHandles(ctx context.Context, walletAddress string, xHandle, telegramHandle *string, telegramID *int64) error {
	builder := squirrel.
		Update("users").
		Where(squirrel.Eq{"wallet_address": walletAddress})

	if xHandle != nil {
		builder = builder.Set("x_handle", xHandle)
	}
	if telegramHandle != nil {
		builder = builder.Set("telegram_handle", telegramHandle)
	}
	if telegramID != nil {
		builder = builder.Set("telegram_id", telegramID)
	}

	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set social handles: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// AwardReferralBonus credits both sides of a referral in a single
// transaction, latched on referral_verified so the bonus is granted at
// most once per referred wallet.
func (r *Repository) AwardReferralBonus(ctx context.Context, referredWallet string, amount int64, now time.Time) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		referred, err := r.getUserWithTx(ctx, tx, referredWallet)
		if err != nil {
			return err
		}
		if referred.ReferralVerified {
			return ErrAlreadyVerified
		}
		if referred.ReferrerWallet == nil {
			return ErrNoReferrer
		}

		query, args, err := squirrel.
			Update("users").
			Set("points", squirrel.Expr("points + ?", amount)).
			Set("referral_verified", true).
			Where(squirrel.Eq{
				"wallet_address":    referredWallet,
				"referral_verified": false,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyVerified
		}

		referrer, err := r.getUserWithTx(ctx, tx, *referred.ReferrerWallet)
		if err != nil {
			return err
		}

		newToday := int(amount)
		newDiversity := referrer.ScoreDiversity
		if referrer.LastReferralAt != nil && sameDayUTC(*referrer.LastReferralAt, now) {
			newToday += referrer.ScoreToday
		} else {
			// diversity counts distinct days with at least one verified referral
			newDiversity++
		}

		referrerQuery, referrerArgs, err := squirrel.
			Update("users").
			Set("points", squirrel.Expr("points + ?", amount)).
			Set("score_volume", squirrel.Expr("score_volume + 1")).
			Set("score_history", squirrel.Expr("score_history + ?", amount)).
			Set("score_today", newToday).
			Set("score_diversity", newDiversity).
			Set("last_referral_at", now).
			Where(squirrel.Eq{"wallet_address": referrer.WalletAddress}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, referrerQuery, referrerArgs...)
		if err != nil {
			return err
		}

		return nil
	})
}

func sameDayUTC(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func (r *Repository) GetReferralStats(ctx context.Context, walletAddress string, now time.Time) (*model.ReferralStats, error) {
	var user User
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"wallet_address": walletAddress}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	today := user.ScoreToday
	if today != 0 && (user.LastReferralAt == nil || !sameDayUTC(*user.LastReferralAt, now)) {
		today = 0

		resetQuery, resetArgs, err := squirrel.
			Update("users").
			Set("score_today", 0).
			Where(squirrel.Eq{"wallet_address": walletAddress}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return nil, err
		}

		_, err = r.db.ExecContext(ctx, resetQuery, resetArgs...)
		if err != nil {
			return nil, err
		}
	}

	return &model.ReferralStats{
		WalletAddress: user.WalletAddress,
		Volume:        user.ScoreVolume,
		Diversity:     user.ScoreDiversity,
		History:       user.ScoreHistory,
		Today:         today,
		Verified:      user.ReferralVerified,
	}, nil
}

func (r *Repository) GetReferredUsers(ctx context.Context, walletAddress string) ([]*model.ReferredUser, error) {
	query, args, err := squirrel.
		Select("wallet_address", "x_handle", "points", "referral_verified", "registration_date").
		From("users").
		Where(squirrel.Eq{"referrer_wallet": walletAddress}).
		OrderBy("registration_date DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var rows []struct {
		WalletAddress    string    `db:"wallet_address"`
		XHandle          *string   `db:"x_handle"`
		Points           int64     `db:"points"`
		ReferralVerified bool      `db:"referral_verified"`
		RegistrationDate time.Time `db:"registration_date"`
	}
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get referred users: %w", err)
	}

	referred := make([]*model.ReferredUser, len(rows))
	for i, row := range rows {
		referred[i] = &model.ReferredUser{
			WalletAddress: row.WalletAddress,
			XHandle:       row.XHandle,
			Points:        row.Points,
			Verified:      row.ReferralVerified,
			JoinedAt:      row.RegistrationDate,
		}
	}

	return referred, nil
}

func (r *Repository) GetTopUsers(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	query, args, err := squirrel.
		Select(
			"wallet_address",
			"x_handle",
			"points",
			"(SELECT COUNT(*) FROM users AS referred WHERE referred.referrer_wallet = users.wallet_address) AS referrals",
		).
		From("users").
		OrderBy("points DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var entries []leaderboardEntry
	err = r.db.SelectContext(ctx, &entries, query, args...)
	if err != nil {
		return nil, err
	}

	board := make([]*model.LeaderboardEntry, len(entries))
	for i, entry := range entries {
		board[i] = &model.LeaderboardEntry{
			WalletAddress: entry.WalletAddress,
			XHandle:       entry.XHandle,
			Points:        entry.Points,
			Referrals:     entry.Referrals,
		}
	}

	return board, nil
}

func (r *Repository) SetReplyPosted(ctx context.Context, walletAddress string) error {
	query, args, err := squirrel.
		Update("users").
		Set("reply_posted", true).
		Where(squirrel.Eq{"wallet_address": walletAddress}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
