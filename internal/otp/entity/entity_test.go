package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOTP_State(t *testing.T) {
	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	base := OTP{CreatedAt: now.Add(-time.Minute), ExpiresAt: now.Add(9 * time.Minute)}

	tests := []struct {
		name string
		mut  func(o *OTP)
		at   time.Time
		want OTPState
	}{
		{name: "fresh", mut: func(*OTP) {}, at: now, want: OTPStateIssued},
		{name: "at expiry instant still issued", mut: func(*OTP) {}, at: base.ExpiresAt, want: OTPStateIssued},
		{name: "past expiry", mut: func(*OTP) {}, at: base.ExpiresAt.Add(time.Nanosecond), want: OTPStateExpired},
		{name: "locked", mut: func(o *OTP) { o.Attempts = 5 }, at: now, want: OTPStateLocked},
		{name: "used beats expiry", mut: func(o *OTP) { o.Used = true }, at: base.ExpiresAt.Add(time.Hour), want: OTPStateValidated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := base
			tt.mut(&o)
			assert.Equal(t, tt.want, o.State(tt.at, 5))
		})
	}
}

func TestInvalidOTPError(t *testing.T) {
	var err error = &InvalidOTPError{Remaining: 3}

	var target *InvalidOTPError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, 3, target.Remaining)
	assert.Equal(t, "otp: invalid code, 3 attempts remaining", err.Error())
}

func TestOTPState_String(t *testing.T) {
	assert.Equal(t, "LOCKED", OTPStateLocked.String())
	assert.Equal(t, "UNKNOWN", OTPState(42).String())
	assert.Equal(t, "Active", AccountStatusActive.String())
}
