package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/assetly/internal/otp/entity"
	"github.com/shandysiswandi/assetly/internal/pkg/goerror"
)

type IssueInput struct {
	Email    string `validate:"required,email,max=255"`
	SourceIP string
}

// Issue creates a code for the account behind in.Email and mails it. The
// same message comes back whether or not the account exists; only the rate
// limit is reported as an error.
func (s *Usecase) Issue(ctx context.Context, in IssueInput) (string, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	in.SourceIP = truncate(strings.TrimSpace(in.SourceIP), maxSourceIPLength)

	if err := s.validator.Validate(in); err != nil {
		return "", goerror.NewInvalidInput(err)
	}

	acc, err := s.repoDB.GetAccountByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "otp requested for unknown email", "source_ip", in.SourceIP)
		return GenericIssueMessage, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "error", err)
		return "", goerror.NewServer(err)
	}

	p := s.policy()

	var (
		code   string
		record entity.OTP
	)
	err = s.repoDB.Atomic(ctx, acc.ID, func(ctx context.Context) error {
		now := s.clock.Now()

		count, err := s.repoDB.CountOTPCreatedSince(ctx, acc.ID, now.Add(-p.rateWindow))
		if err != nil {
			return err
		}
		if count >= p.maxRequests {
			return entity.ErrRateLimited
		}

		code, err = s.generator.Generate()
		if err != nil {
			return err
		}

		codeHash, err := s.otpHash.Hash(code)
		if err != nil {
			return err
		}

		record = entity.OTP{
			ID:        s.uid.Generate(),
			AccountID: acc.ID,
			CodeHash:  string(codeHash),
			CreatedAt: now,
			ExpiresAt: now.Add(p.ttl),
			SourceIP:  in.SourceIP,
		}

		return s.repoDB.SaveOTP(ctx, &record)
	})
	if errors.Is(err, entity.ErrRateLimited) {
		addCount(ctx, s.rateLimitedCounter, 1)
		slog.WarnContext(ctx, "otp request rate limited", "account_id", acc.ID, "source_ip", in.SourceIP)
		return "", goerror.WrapBusiness(err, "Too many requests. Please try again after 1 hour.", goerror.CodeTooManyRequest)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue otp", "account_id", acc.ID, "error", err)
		return "", goerror.NewServer(err)
	}

	addCount(ctx, s.issuedCounter, 1)
	s.devLogCode(ctx, acc, code)

	s.sendCode(ctx, p, acc, record.ID, code)

	s.publishAudit(ctx, entity.AuditEvent{
		Type:      entity.EventOTPIssued,
		AccountID: acc.ID,
		OTPID:     record.ID,
		SourceIP:  record.SourceIP,
	})

	return GenericIssueMessage, nil
}

// sendCode mails the code after commit. Delivery is best effort and bounded
// by modules.otp.email_timeout_seconds, so a stalled relay cannot hold the
// request.
func (s *Usecase) sendCode(ctx context.Context, p policy, acc *entity.Account, otpID int64, code string) {
	ctx, cancel := context.WithTimeout(ctx, p.emailTimeout)
	defer cancel()

	if err := s.repoEmail.SendOTP(ctx, OTPMail{
		To:       acc.Email,
		FullName: acc.FullName,
		Code:     code,
		TTL:      p.ttl,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to send otp email", "account_id", acc.ID, "otp_id", otpID, "error", err)
	}
}

// devLogCode prints the plaintext code for local development. It is the only
// place a code reaches a log and is off unless modules.otp.dev_log_code is set.
func (s *Usecase) devLogCode(ctx context.Context, acc *entity.Account, code string) {
	if !s.cfg.GetBool("modules.otp.dev_log_code") {
		return
	}
	slog.WarnContext(ctx, "development otp code", "account_id", acc.ID, "email", acc.Email, "dev_code", code)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
