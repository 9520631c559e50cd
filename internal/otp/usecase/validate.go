package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shandysiswandi/assetly/internal/otp/entity"
	"github.com/shandysiswandi/assetly/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type ValidateInput struct {
	Email string `validate:"required,email,max=255"`
	Code  string `validate:"required,max=32"`
}

// Validate checks in.Code against the latest unused code of the account.
//
// It returns false for an unknown email, a missing code, an expired code or
// a code that was already used. A wrong code returns *entity.InvalidOTPError
// while attempts remain and entity.ErrTooManyAttempts once the cap is hit,
// both wrapped in a goerror business error.
func (s *Usecase) Validate(ctx context.Context, in ValidateInput) (bool, error) {
	ctx, span := s.startSpan(ctx, "Validate")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return false, goerror.NewInvalidInput(err)
	}

	acc, err := s.repoDB.GetAccountByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		s.countValidation(ctx, "unknown_account")
		return false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "error", err)
		return false, goerror.NewServer(err)
	}

	p := s.policy()

	// verdict carries user-facing outcomes out of the unit so the attempt
	// increment still commits.
	var (
		valid   bool
		verdict error
		outcome string
		otpID   int64
	)
	err = s.repoDB.Atomic(ctx, acc.ID, func(ctx context.Context) error {
		valid, verdict, outcome, otpID = false, nil, "", 0

		record, err := s.repoDB.GetLatestUnusedOTP(ctx, acc.ID)
		if errors.Is(err, goerror.ErrNotFound) {
			outcome = "missing"
			return nil
		}
		if err != nil {
			return err
		}
		otpID = record.ID

		switch record.State(s.clock.Now(), p.maxAttempts) {
		case entity.OTPStateExpired:
			outcome = "expired"
			return nil
		case entity.OTPStateLocked:
			outcome, verdict = "locked", entity.ErrTooManyAttempts
			return nil
		}

		if !s.otpHash.Verify(record.CodeHash, in.Code) {
			record.Attempts++
			if err := s.repoDB.SaveOTP(ctx, record); err != nil {
				return err
			}

			if remaining := p.maxAttempts - record.Attempts; remaining > 0 {
				outcome, verdict = "invalid", &entity.InvalidOTPError{Remaining: remaining}
			} else {
				outcome, verdict = "locked", entity.ErrTooManyAttempts
			}
			return nil
		}

		record.Used = true
		if err := s.repoDB.SaveOTP(ctx, record); err != nil {
			return err
		}

		valid, outcome = true, "validated"
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to validate otp", "account_id", acc.ID, "otp_id", otpID, "error", err)
		return false, goerror.NewServer(err)
	}

	s.countValidation(ctx, outcome)

	var invalidErr *entity.InvalidOTPError
	switch {
	case errors.As(verdict, &invalidErr):
		slog.WarnContext(ctx, "otp validation failed", "account_id", acc.ID, "otp_id", otpID, "remaining_attempts", invalidErr.Remaining)
		s.publishRejected(ctx, acc.ID, otpID, outcome, invalidErr.Remaining)
		return false, goerror.WrapBusiness(verdict,
			"Invalid OTP. "+strconv.Itoa(invalidErr.Remaining)+" attempts remaining.",
			goerror.CodeBadRequest,
			"remaining_attempts", strconv.Itoa(invalidErr.Remaining),
		)

	case errors.Is(verdict, entity.ErrTooManyAttempts):
		slog.WarnContext(ctx, "otp locked after too many attempts", "account_id", acc.ID, "otp_id", otpID)
		s.publishRejected(ctx, acc.ID, otpID, outcome, 0)
		return false, goerror.WrapBusiness(verdict, "Too many failed attempts. Please request a new OTP.", goerror.CodeBadRequest)
	}

	if valid {
		s.publishAudit(ctx, entity.AuditEvent{
			Type:      entity.EventOTPValidated,
			AccountID: acc.ID,
			OTPID:     otpID,
			Outcome:   outcome,
		})
	}

	return valid, nil
}

func (s *Usecase) countValidation(ctx context.Context, outcome string) {
	addCount(ctx, s.validationCounter, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (s *Usecase) publishRejected(ctx context.Context, accountID, otpID int64, outcome string, remaining int) {
	s.publishAudit(ctx, entity.AuditEvent{
		Type:      entity.EventOTPRejected,
		AccountID: accountID,
		OTPID:     otpID,
		Outcome:   outcome,
		Remaining: remaining,
	})
}
