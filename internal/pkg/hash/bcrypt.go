package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const bcryptMaxInput = 72

// Bcrypt hashes with bcrypt after appending a pepper that lives in
// configuration only. Input longer than 72 bytes, pepper included, is
// rejected with ErrInputTooLong because bcrypt would ignore the tail.
type Bcrypt struct {
	cost   int
	pepper string
}

// NewBcrypt clamps an out of range cost to bcrypt.DefaultCost.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost, pepper: pepper}
}

func (b *Bcrypt) peppered(s string) []byte { return []byte(s + b.pepper) }

func (b *Bcrypt) Hash(s string) ([]byte, error) {
	in := b.peppered(s)
	if len(in) > bcryptMaxInput {
		return nil, fmt.Errorf("%w: %d bytes, bcrypt takes %d", ErrInputTooLong, len(in), bcryptMaxInput)
	}
	return bcrypt.GenerateFromPassword(in, b.cost)
}

func (b *Bcrypt) Verify(hashed, s string) bool {
	return hashed != "" && bcrypt.CompareHashAndPassword([]byte(hashed), b.peppered(s)) == nil
}
