// Package otp generates one-time passcodes.
//
// Codes are drawn from crypto/rand so they are unpredictable from earlier
// outputs. A code is a fixed-width decimal string without a leading zero, so
// a 6-digit generator yields values uniformly in [100000, 999999].
package otp
