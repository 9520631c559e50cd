package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/assetly/internal/otp/entity"
	"github.com/shandysiswandi/assetly/internal/pkg/goerror"
	"github.com/shandysiswandi/assetly/internal/pkg/hash"
)

const msgInvalidOrExpiredOTP = "Invalid or expired OTP"

type PasswordResetInput struct {
	Email           string `validate:"required,email,max=255"`
	NewPassword     string `validate:"required,password"`
	ConfirmPassword string `validate:"required,eqfield=NewPassword"`
}

// HasRecentlyValidated reports whether the latest used code of the account
// was issued inside the reset window.
func (s *Usecase) HasRecentlyValidated(ctx context.Context, email string) (bool, error) {
	ctx, span := s.startSpan(ctx, "HasRecentlyValidated")
	defer span.End()

	acc, err := s.repoDB.GetAccountByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, goerror.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "error", err)
		return false, goerror.NewServer(err)
	}

	ok, err := s.recentlyValidated(ctx, acc.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get latest used otp", "account_id", acc.ID, "error", err)
		return false, goerror.NewServer(err)
	}

	return ok, nil
}

func (s *Usecase) recentlyValidated(ctx context.Context, accountID int64) (bool, error) {
	record, err := s.repoDB.GetLatestUsedOTP(ctx, accountID)
	if errors.Is(err, goerror.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	since := s.clock.Now().Add(-s.policy().resetWindow)
	return record.CreatedAt.After(since), nil
}

// PasswordReset sets a new password for an account that validated a code
// moments ago. The used codes are deleted in the same unit, so one
// validation allows one reset.
func (s *Usecase) PasswordReset(ctx context.Context, in PasswordResetInput) error {
	ctx, span := s.startSpan(ctx, "PasswordReset")
	defer span.End()

	in.Email = normalizeEmail(in.Email)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	acc, err := s.repoDB.GetAccountByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.WrapBusiness(entity.ErrResetNotAllowed, msgInvalidOrExpiredOTP, goerror.CodeBadRequest)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "error", err)
		return goerror.NewServer(err)
	}

	newHash, err := s.passwordHash.Hash(in.NewPassword)
	if errors.Is(err, hash.ErrInputTooLong) {
		return goerror.NewInvalidInput(nil, "new_password", "new_password is too long")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash new password", "account_id", acc.ID, "error", err)
		return goerror.NewServer(err)
	}

	err = s.repoDB.Atomic(ctx, acc.ID, func(ctx context.Context) error {
		ok, err := s.recentlyValidated(ctx, acc.ID)
		if err != nil {
			return err
		}
		if !ok {
			return entity.ErrResetNotAllowed
		}

		if err := s.repoDB.UpdateAccountPassword(ctx, acc.ID, string(newHash)); err != nil {
			return err
		}

		_, err = s.repoDB.DeleteUsedOTP(ctx, acc.ID)
		return err
	})
	if errors.Is(err, entity.ErrResetNotAllowed) {
		slog.WarnContext(ctx, "password reset without recent otp validation", "account_id", acc.ID)
		return goerror.WrapBusiness(err, msgInvalidOrExpiredOTP, goerror.CodeBadRequest)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to reset password", "account_id", acc.ID, "error", err)
		return goerror.NewServer(err)
	}

	s.publishAudit(ctx, entity.AuditEvent{
		Type:      entity.EventPasswordReset,
		AccountID: acc.ID,
		Outcome:   "reset",
	})

	return nil
}
