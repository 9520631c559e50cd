package inbound

import (
	"context"

	"github.com/shandysiswandi/assetly/internal/otp/usecase"
	"github.com/shandysiswandi/assetly/internal/pkg/router"
)

type uc interface {
	Issue(ctx context.Context, in usecase.IssueInput) (string, error)
	Validate(ctx context.Context, in usecase.ValidateInput) (bool, error)
	HasRecentlyValidated(ctx context.Context, email string) (bool, error)
	PasswordReset(ctx context.Context, in usecase.PasswordResetInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Password recovery (public)
	r.POST("/api/v1/auth/password/forgot", end.PasswordForgot)
	r.POST("/api/v1/auth/otp/resend", end.OTPResend)
	r.POST("/api/v1/auth/otp/validate", end.OTPValidate)
	r.POST("/api/v1/auth/password/reset/eligibility", end.PasswordResetEligibility)
	r.POST("/api/v1/auth/password/reset", end.PasswordReset)
}
