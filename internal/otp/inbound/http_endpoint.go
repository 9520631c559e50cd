package inbound

import (
	"github.com/shandysiswandi/assetly/internal/otp/usecase"
	"github.com/shandysiswandi/assetly/internal/pkg/goerror"
	"github.com/shandysiswandi/assetly/internal/pkg/router"
)

// HTTPEndpoint exposes the password recovery handlers.
type HTTPEndpoint struct {
	uc uc
}

// PasswordForgot issues an OTP to the email when it belongs to an account.
func (h *HTTPEndpoint) PasswordForgot(r *router.Request) (any, error) {
	return h.issue(r)
}

// OTPResend performs the same issuance as PasswordForgot, under the same rate limit.
func (h *HTTPEndpoint) OTPResend(r *router.Request) (any, error) {
	return h.issue(r)
}

func (h *HTTPEndpoint) issue(r *router.Request) (any, error) {
	var req PasswordForgotRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	msg, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		Email:    req.Email,
		SourceIP: r.ClientIP(),
	})
	if err != nil {
		return nil, err
	}

	return IssueResponse{message: msg}, nil
}

// OTPValidate checks a submitted code. A false verdict without a more
// specific reason is reported as a generic bad request.
func (h *HTTPEndpoint) OTPValidate(r *router.Request) (any, error) {
	var req OTPValidateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	ok, err := h.uc.Validate(r.Context(), usecase.ValidateInput{
		Email: req.Email,
		Code:  req.OTP,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, goerror.NewBusiness("Invalid or expired OTP", goerror.CodeBadRequest)
	}

	return OTPValidateResponse{IsValid: true}, nil
}

// PasswordResetEligibility tells the client whether a reset would be
// accepted now, so it can skip the password form once the window closed.
func (h *HTTPEndpoint) PasswordResetEligibility(r *router.Request) (any, error) {
	var req PasswordForgotRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	ok, err := h.uc.HasRecentlyValidated(r.Context(), req.Email)
	if err != nil {
		return nil, err
	}

	return PasswordResetEligibilityResponse{Eligible: ok}, nil
}

// PasswordReset sets a new password after a recent successful validation.
func (h *HTTPEndpoint) PasswordReset(r *router.Request) (any, error) {
	var req PasswordResetRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.PasswordReset(r.Context(), usecase.PasswordResetInput{
		Email:           req.Email,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		return nil, err
	}

	return PasswordResetResponse{}, nil
}
