package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/assetly/internal/otp/entity"
	"github.com/shandysiswandi/assetly/internal/pkg/goerror"
)

// CleanupExpired deletes unused codes whose expiry is older than the
// configured retention. Used codes are never removed here. Running it again
// with nothing eligible returns 0.
func (s *Usecase) CleanupExpired(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "CleanupExpired")
	defer span.End()

	cutoff := s.clock.Now().Add(-s.policy().retention)

	deleted, err := s.repoDB.DeleteExpiredOTP(ctx, cutoff)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete expired otp", "cutoff", cutoff, "error", err)
		return 0, goerror.NewServer(err)
	}

	addCount(ctx, s.cleanupCounter, deleted)
	slog.InfoContext(ctx, "expired otp cleanup finished", "cutoff", cutoff, "deleted", deleted)

	return deleted, nil
}

// CleanupPreview lists up to limit records CleanupExpired would delete now.
// A non-positive limit uses modules.otp.cleanup_preview_limit.
func (s *Usecase) CleanupPreview(ctx context.Context, limit int) ([]entity.OTP, error) {
	ctx, span := s.startSpan(ctx, "CleanupPreview")
	defer span.End()

	p := s.policy()
	if limit <= 0 {
		limit = p.previewLimit
	}
	cutoff := s.clock.Now().Add(-p.retention)

	records, err := s.repoDB.FindUnusedExpiredOTP(ctx, cutoff, limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find unused expired otp", "cutoff", cutoff, "error", err)
		return nil, goerror.NewServer(err)
	}

	return records, nil
}
