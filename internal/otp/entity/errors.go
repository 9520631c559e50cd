package entity

import (
	"errors"
	"strconv"
)

var (
	// ErrRateLimited is returned when an account already has the maximum
	// number of codes inside the rate window.
	ErrRateLimited = errors.New("otp: too many requests")
	// ErrTooManyAttempts is returned once the current code is locked.
	ErrTooManyAttempts = errors.New("otp: too many failed attempts")
	// ErrResetNotAllowed is returned when no recent validation backs a reset.
	ErrResetNotAllowed = errors.New("otp: no recent validation for password reset")
)

// InvalidOTPError is a wrong code that still leaves attempts.
type InvalidOTPError struct {
	Remaining int
}

func (e *InvalidOTPError) Error() string {
	return "otp: invalid code, " + strconv.Itoa(e.Remaining) + " attempts remaining"
}
