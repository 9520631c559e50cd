package db

import (
	"context"

	"github.com/shandysiswandi/assetly/internal/otp/entity"
	"github.com/shandysiswandi/assetly/internal/pkg/goerror"
)

func (s *DB) GetAccountByEmail(ctx context.Context, email string) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountByEmail")
	defer func() { s.endSpan(span, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var acc entity.Account
	err = s.q(ctx).QueryRow(ctx,
		`SELECT id, email, full_name, status FROM accounts WHERE lower(email) = lower($1)`,
		email,
	).Scan(&acc.ID, &acc.Email, &acc.FullName, &acc.Status)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &acc, nil
}

func (s *DB) UpdateAccountPassword(ctx context.Context, accountID int64, passwordHash string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateAccountPassword")
	defer func() { s.endSpan(span, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`,
		accountID, passwordHash,
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
