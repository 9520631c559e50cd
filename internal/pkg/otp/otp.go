package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
)

// DefaultDigits is the code width used when a generator is built with an
// out-of-range width.
const DefaultDigits = 6

// ErrEntropy wraps failures of the underlying randomness source.
var ErrEntropy = errors.New("otp: entropy source failure")

// Generator produces one-time codes.
type Generator interface {
	Generate() (string, error)
}

// Numeric draws decimal codes of a fixed width.
type Numeric struct {
	digits int
	min    *big.Int
	span   *big.Int
	rand   io.Reader
}

// NewNumeric returns a Numeric generator reading from crypto/rand. digits
// outside [4, 10] fall back to DefaultDigits.
func NewNumeric(digits int) *Numeric {
	return newNumeric(digits, rand.Reader)
}

func newNumeric(digits int, r io.Reader) *Numeric {
	if digits < 4 || digits > 10 {
		digits = DefaultDigits
	}

	lo := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits-1)), nil)
	hi := new(big.Int).Mul(lo, big.NewInt(10))

	return &Numeric{
		digits: digits,
		min:    lo,
		span:   new(big.Int).Sub(hi, lo),
		rand:   r,
	}
}

// Digits returns the code width.
func (n *Numeric) Digits() int {
	return n.digits
}

// Generate returns a code uniformly distributed in [10^(d-1), 10^d - 1].
func (n *Numeric) Generate() (string, error) {
	v, err := rand.Int(n.rand, n.span)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEntropy, err)
	}

	return strconv.FormatInt(v.Add(v, n.min).Int64(), 10), nil
}
