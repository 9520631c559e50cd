package db

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/assetly/internal/pkg/goerror"
	"github.com/shandysiswandi/assetly/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout = 5 * time.Second

	// lockNamespace keeps OTP advisory locks apart from other users of
	// pg_advisory_xact_lock(int, int) on the same database.
	lockNamespace int32 = 7001

	maxTxRetries = 3

	advisoryLockSQL = `SELECT pg_advisory_xact_lock($1::int4, hashtext($2::text))`
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

type Config struct {
	// Timeout bounds every store call. Zero means 5s.
	Timeout time.Duration
	// RetryBase is the first backoff step for serialization failures.
	RetryBase time.Duration
}

type DB struct {
	conn      *pgxpool.Pool
	ins       instrument.Instrumentation
	timeout   time.Duration
	retryBase time.Duration
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation, cfg Config) *DB {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 25 * time.Millisecond
	}

	return &DB{
		conn:      conn,
		ins:       ins,
		timeout:   cfg.Timeout,
		retryBase: cfg.RetryBase,
	}
}

// q returns the transaction carried by ctx, or the pool.
func (s *DB) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.conn
}

func (s *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// Atomic runs fn inside one transaction holding the advisory lock of
// accountID. Store calls made with the ctx passed to fn join that
// transaction. A nested call reuses the outer transaction. Serialization
// failures and deadlocks rerun fn from the start.
func (s *DB) Atomic(ctx context.Context, accountID int64, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	ctx, span := s.startSpan(ctx, "Atomic")
	defer func() { s.endSpan(span, err) }()

	b := retry.WithMaxRetries(maxTxRetries, retry.NewExponential(s.retryBase))
	b = retry.WithJitterPercent(20, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := s.atomicOnce(ctx, accountID, fn)
		if isRetryable(err) {
			slog.WarnContext(ctx, "retrying otp transaction", "account_id", accountID, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *DB) atomicOnce(ctx context.Context, accountID int64, fn func(ctx context.Context) error) error {
	// The whole unit, lock wait included, shares one deadline.
	ctx, cancel := context.WithTimeout(ctx, 2*s.timeout)
	defer cancel()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	if _, err := tx.Exec(ctx, advisoryLockSQL, advisoryLockArgs(accountID)...); err != nil {
		return s.mapError(err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	return s.mapError(tx.Commit(ctx))
}

// advisoryLockArgs binds the account as text, the type hashtext takes.
func advisoryLockArgs(accountID int64) []any {
	return []any{lockNamespace, strconv.FormatInt(accountID, 10)}
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// - 23505 unique violation → goerror.ErrConflict
// - 40001 serialization_failure, 40P01 deadlock_detected → kept as is, retried by Atomic
func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
