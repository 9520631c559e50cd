package entity

import "time"

// OTPState is derived from an OTP record at a point in time.
type OTPState int

const (
	// OTPStateIssued is unused, unexpired and below the attempt cap.
	OTPStateIssued OTPState = iota
	// OTPStateValidated is terminal: the code was accepted once.
	OTPStateValidated
	// OTPStateExpired means now is past ExpiresAt.
	OTPStateExpired
	// OTPStateLocked means the attempt cap was reached.
	OTPStateLocked
)

func (s OTPState) String() string {
	switch s {
	case OTPStateIssued:
		return "ISSUED"
	case OTPStateValidated:
		return "VALIDATED"
	case OTPStateExpired:
		return "EXPIRED"
	case OTPStateLocked:
		return "LOCKED"
	default:
		return "UNKNOWN"
	}
}

// OTP is one issued code. Only the hash of the code is kept.
type OTP struct {
	ID        int64
	AccountID int64
	CodeHash  string
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
	Attempts  int
	SourceIP  string
}

// State reports the record state. Used wins over expiry and lockout.
func (o OTP) State(now time.Time, maxAttempts int) OTPState {
	switch {
	case o.Used:
		return OTPStateValidated
	case now.After(o.ExpiresAt):
		return OTPStateExpired
	case o.Attempts >= maxAttempts:
		return OTPStateLocked
	default:
		return OTPStateIssued
	}
}

// IsExpired reports whether now is strictly after ExpiresAt.
func (o OTP) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
