package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shandysiswandi/assetly/internal/otp/entity"
	"github.com/shandysiswandi/assetly/internal/pkg/goerror"
)

const otpColumns = `id, account_id, code_hash, created_at, expires_at, used, attempts, source_ip`

func scanOTP(row pgx.Row) (*entity.OTP, error) {
	var (
		o  entity.OTP
		ip pgtype.Text
	)
	if err := row.Scan(&o.ID, &o.AccountID, &o.CodeHash, &o.CreatedAt, &o.ExpiresAt, &o.Used, &o.Attempts, &ip); err != nil {
		return nil, err
	}
	o.SourceIP = ip.String
	o.CreatedAt = o.CreatedAt.UTC()
	o.ExpiresAt = o.ExpiresAt.UTC()

	return &o, nil
}

func (s *DB) CountOTPCreatedSince(ctx context.Context, accountID int64, since time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountOTPCreatedSince")
	defer func() { s.endSpan(span, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var n int64
	err = s.q(ctx).QueryRow(ctx,
		`SELECT count(*) FROM otp_codes WHERE account_id = $1 AND created_at >= $2`,
		accountID, since,
	).Scan(&n)
	if err != nil {
		return 0, s.mapError(err)
	}

	return n, nil
}

func (s *DB) GetLatestUnusedOTP(ctx context.Context, accountID int64) (_ *entity.OTP, err error) {
	ctx, span := s.startSpan(ctx, "GetLatestUnusedOTP")
	defer func() { s.endSpan(span, err) }()

	return s.latestOTP(ctx, accountID, false)
}

func (s *DB) GetLatestUsedOTP(ctx context.Context, accountID int64) (_ *entity.OTP, err error) {
	ctx, span := s.startSpan(ctx, "GetLatestUsedOTP")
	defer func() { s.endSpan(span, err) }()

	return s.latestOTP(ctx, accountID, true)
}

// latestOTP breaks created_at ties by id so the result is deterministic.
func (s *DB) latestOTP(ctx context.Context, accountID int64, used bool) (*entity.OTP, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := scanOTP(s.q(ctx).QueryRow(ctx,
		`SELECT `+otpColumns+` FROM otp_codes
		WHERE account_id = $1 AND used = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		accountID, used,
	))
	if err != nil {
		return nil, s.mapError(err)
	}

	return o, nil
}

// SaveOTP inserts o or updates its mutable fields. A record already marked
// used is never rewritten; that case reports goerror.ErrConflict.
func (s *DB) SaveOTP(ctx context.Context, o *entity.OTP) (err error) {
	ctx, span := s.startSpan(ctx, "SaveOTP")
	defer func() { s.endSpan(span, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.q(ctx).Exec(ctx,
		`INSERT INTO otp_codes (`+otpColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET used = EXCLUDED.used, attempts = EXCLUDED.attempts
		WHERE otp_codes.used = false`,
		o.ID, o.AccountID, o.CodeHash, o.CreatedAt, o.ExpiresAt, o.Used, o.Attempts,
		pgtype.Text{String: o.SourceIP, Valid: o.SourceIP != ""},
	)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrConflict
	}

	return nil
}

// DeleteExpiredOTP removes unused records whose expiry is before cutoff.
func (s *DB) DeleteExpiredOTP(ctx context.Context, cutoff time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExpiredOTP")
	defer func() { s.endSpan(span, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.q(ctx).Exec(ctx,
		`DELETE FROM otp_codes WHERE used = false AND expires_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}

func (s *DB) FindUnusedExpiredOTP(ctx context.Context, cutoff time.Time, limit int) (_ []entity.OTP, err error) {
	ctx, span := s.startSpan(ctx, "FindUnusedExpiredOTP")
	defer func() { s.endSpan(span, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.q(ctx).Query(ctx,
		`SELECT `+otpColumns+` FROM otp_codes
		WHERE used = false AND expires_at < $1
		ORDER BY id
		LIMIT $2`,
		cutoff, limit,
	)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	out := make([]entity.OTP, 0, limit)
	for rows.Next() {
		o, err := scanOTP(rows)
		if err != nil {
			return nil, s.mapError(err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) DeleteUsedOTP(ctx context.Context, accountID int64) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteUsedOTP")
	defer func() { s.endSpan(span, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.q(ctx).Exec(ctx,
		`DELETE FROM otp_codes WHERE account_id = $1 AND used = true`,
		accountID,
	)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
