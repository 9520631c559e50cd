package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDriver_RoundTrip(t *testing.T) {
	drivers := []string{DriverBcrypt, DriverArgon2id, DriverHMACSHA256, ""}

	for _, driver := range drivers {
		t.Run("driver="+driver, func(t *testing.T) {
			// Arrange
			h, err := NewFromDriver(driver, FactoryOptions{BcryptCost: 4, Pepper: "pep", HMACSecret: "secret"})
			require.NoError(t, err)

			// Act
			digest, err := h.Hash("482913")
			require.NoError(t, err)

			// Assert
			assert.NotEqual(t, "482913", string(digest))
			assert.True(t, h.Verify(string(digest), "482913"))
			assert.False(t, h.Verify(string(digest), "482910"))
			assert.False(t, h.Verify("", "482913"))
		})
	}
}

func TestNewFromDriver_Errors(t *testing.T) {
	_, err := NewFromDriver("md5", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewFromDriver(DriverHMACSHA256, FactoryOptions{})
	assert.ErrorIs(t, err, ErrSecretRequired)
}

func TestBcrypt_RejectsLongInput(t *testing.T) {
	tests := []struct {
		name   string
		pepper string
		input  string
	}{
		{name: "input alone", input: strings.Repeat("a", 73)},
		{name: "pepper pushes input over", pepper: strings.Repeat("p", 32), input: strings.Repeat("a", 41)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBcrypt(4, tt.pepper).Hash(tt.input)

			assert.ErrorIs(t, err, ErrInputTooLong)
		})
	}

	_, err := NewBcrypt(4, strings.Repeat("p", 32)).Hash(strings.Repeat("a", 40))
	assert.NoError(t, err)
}

func TestHMACSHA256_Verify(t *testing.T) {
	h := NewHMACSHA256("secret")
	digest, err := h.Hash("482913")
	require.NoError(t, err)

	assert.Len(t, digest, 64)
	assert.False(t, h.Verify("not-hex", "482913"))
	assert.False(t, h.Verify(string(digest[:10]), "482913"))
	assert.False(t, NewHMACSHA256("other").Verify(string(digest), "482913"))
}

func TestParseArgon2id(t *testing.T) {
	digest, err := NewArgon2id("").Hash("hunter22")
	require.NoError(t, err)

	p, salt, key, err := parseArgon2id(string(digest))
	require.NoError(t, err)
	assert.Equal(t, argon2Params{memory: 32 << 10, time: 3, threads: 2}, p)
	assert.Len(t, salt, 16)
	assert.Len(t, key, 32)

	for _, bad := range []string{"", "$argon2i$v=19$m=1,t=1,p=1$c2FsdA$a2V5", "$argon2id$v=18$m=1,t=1,p=1$c2FsdA$a2V5", "$argon2id$v=19$m=1,t=1,p=1$c2FsdA$"} {
		_, _, _, err := parseArgon2id(bad)
		assert.ErrorIs(t, err, errArgon2Format, bad)
	}
}
