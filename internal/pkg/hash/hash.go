package hash

import (
	"errors"
	"fmt"
	"strings"
)

// Driver names accepted by NewFromDriver.
const (
	DriverBcrypt     = "bcrypt"
	DriverArgon2id   = "argon2id"
	DriverHMACSHA256 = "hmac-sha256"
)

var (
	ErrUnknownDriver  = errors.New("hash: unknown driver")
	ErrSecretRequired = errors.New("hash: hmac-sha256 requires a secret")
	// ErrInputTooLong is returned when the input, pepper included, is more
	// than the algorithm can take.
	ErrInputTooLong = errors.New("hash: input too long")
)

// Hash turns a secret into a stored digest and checks candidates against it.
// Implementations are safe for concurrent use.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}

type FactoryOptions struct {
	BcryptCost int
	HMACSecret string
	// Pepper is appended before hashing by bcrypt and argon2id.
	Pepper string
}

// NewFromDriver builds a Hash by driver name. Empty means bcrypt.
func NewFromDriver(driver string, opts FactoryOptions) (Hash, error) {
	switch d := strings.ToLower(strings.TrimSpace(driver)); d {
	case "", DriverBcrypt:
		return NewBcrypt(opts.BcryptCost, opts.Pepper), nil
	case DriverArgon2id:
		return NewArgon2id(opts.Pepper), nil
	case DriverHMACSHA256:
		if opts.HMACSecret == "" {
			return nil, ErrSecretRequired
		}
		return NewHMACSHA256(opts.HMACSecret), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, d)
	}
}
