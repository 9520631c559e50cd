package entity

import "time"

const (
	EventOTPIssued     = "otp.issued"
	EventOTPValidated  = "otp.validated"
	EventOTPRejected   = "otp.rejected"
	EventPasswordReset = "otp.password_reset"
)

// AuditEvent is published after an OTP decision. It never carries the code.
type AuditEvent struct {
	Type       string    `json:"type"`
	AccountID  int64     `json:"account_id"`
	OTPID      int64     `json:"otp_id,omitempty"`
	SourceIP   string    `json:"source_ip,omitempty"`
	Outcome    string    `json:"outcome,omitempty"`
	Remaining  int       `json:"remaining_attempts,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
