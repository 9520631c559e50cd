package inbound

type PasswordForgotRequest struct {
	Email string `json:"email"`
}

// IssueResponse carries the generic issuance message. It is identical for
// known and unknown emails.
type IssueResponse struct {
	message string
}

func (r IssueResponse) Message() string {
	return r.message
}

type OTPValidateRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type OTPValidateResponse struct {
	IsValid bool `json:"is_valid"`
}

func (OTPValidateResponse) Message() string {
	return "OTP is valid"
}

type PasswordResetEligibilityResponse struct {
	Eligible bool `json:"eligible"`
}

type PasswordResetRequest struct {
	Email           string `json:"email"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type PasswordResetResponse struct{}

func (PasswordResetResponse) Message() string {
	return "Password has been reset successfully"
}
