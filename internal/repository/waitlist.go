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

type waitlistEntry struct {
	Email     string    `db:"email"`
	Position  int       `db:"position"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *Repository) GetWaitlistPosition(ctx context.Context, email string) (int, error) {
	query, args, err := squirrel.
		Select("position").
		From("email_list").
		Where(squirrel.Eq{"email": email}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var position int
	err = r.db.GetContext(ctx, &position, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	return position, nil
}

// AddWaitlistEmail assigns the next queue position to the email. Repeat
// signups return the already assigned position.
func (r *Repository) AddWaitlistEmail(ctx context.Context, email string) (int, error) {
	var position int
	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		existingQuery, existingArgs, err := squirrel.
			Select("position").
			From("email_list").
			Where(squirrel.Eq{"email": email}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		err = tx.GetContext(ctx, &position, existingQuery, existingArgs...)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		nextQuery, nextArgs, err := squirrel.
			Select("COALESCE(MAX(position), 0) + 1").
			From("email_list").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		err = tx.GetContext(ctx, &position, nextQuery, nextArgs...)
		if err != nil {
			return err
		}

		insertQuery, insertArgs, err := squirrel.
			Insert("email_list").
			SetMap(map[string]interface{}{
				"email":    email,
				"position": position,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, insertQuery, insertArgs...)
		if err != nil {
			return fmt.Errorf("failed to insert waitlist email: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return position, nil
}

func (r *Repository) ListWaitlistEmails(ctx context.Context) ([]*model.WaitlistEntry, error) {
	query, args, err := squirrel.
		Select("email", "position", "created_at").
		From("email_list").
		OrderBy("position ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []waitlistEntry
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist emails: %w", err)
	}

	entries := make([]*model.WaitlistEntry, len(rows))
	for i, row := range rows {
		entries[i] = &model.WaitlistEntry{
			Email:     row.Email,
			Position:  row.Position,
			CreatedAt: row.CreatedAt,
		}
	}

	return entries, nil
}

func (r *Repository) DeleteWaitlistEmail(ctx context.Context, email string) error {
	query, args, err := squirrel.
		Delete("email_list").
		Where(squirrel.Eq{"email": email}).
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
