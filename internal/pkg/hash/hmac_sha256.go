package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// HMACSHA256 is a keyed, deterministic digest stored as lowercase hex. It is
// fast, so it only fits short lived codes protected by an attempt limit.
type HMACSHA256 struct {
	key []byte
}

func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{key: []byte(secret)}
}

func (h *HMACSHA256) sum(s string) []byte {
	mac := hmac.New(sha256.New, h.key)
	_, _ = io.WriteString(mac, s)
	return mac.Sum(nil)
}

func (h *HMACSHA256) Hash(s string) ([]byte, error) {
	return hex.AppendEncode(nil, h.sum(s)), nil
}

// Verify decodes the stored digest and compares in constant time.
func (h *HMACSHA256) Verify(hashed, s string) bool {
	want, err := hex.DecodeString(hashed)
	if err != nil || len(want) != sha256.Size {
		return false
	}
	return hmac.Equal(want, h.sum(s))
}
