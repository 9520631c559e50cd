package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/assetly/internal/otp/usecase"
	"github.com/shandysiswandi/assetly/internal/pkg/instrument"
	"github.com/shandysiswandi/assetly/internal/pkg/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMail struct {
	got []mail.Message
	err error
}

func (f *fakeMail) Send(_ context.Context, msg mail.Message) error {
	f.got = append(f.got, msg)
	return f.err
}

func (f *fakeMail) Close() error { return nil }

func TestMail_SendOTP(t *testing.T) {
	t.Run("composes the reset message", func(t *testing.T) {
		// Arrange
		client := &fakeMail{}
		m := New(client, instrument.NewNoop())

		// Act
		err := m.SendOTP(context.Background(), usecase.OTPMail{
			To:       "alice@example.com",
			FullName: "Alice",
			Code:     "482913",
			TTL:      10 * time.Minute,
		})

		// Assert
		require.NoError(t, err)
		require.Len(t, client.got, 1)
		msg := client.got[0]
		assert.Equal(t, []string{"alice@example.com"}, msg.To)
		assert.Equal(t, "Password Reset OTP", msg.Subject)
		assert.Contains(t, msg.TextBody, "Dear Alice,")
		assert.Contains(t, msg.TextBody, "Your OTP for password reset is: 482913")
		assert.Contains(t, msg.TextBody, "expire in 10 minutes")
	})

	t.Run("falls back to a neutral greeting", func(t *testing.T) {
		// Arrange
		client := &fakeMail{}
		m := New(client, instrument.NewNoop())

		// Act
		err := m.SendOTP(context.Background(), usecase.OTPMail{To: "x@example.com", Code: "111111", TTL: 5 * time.Minute})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, client.got[0].TextBody, "Dear user,")
	})

	t.Run("returns the provider error", func(t *testing.T) {
		// Arrange
		boom := errors.New("smtp down")
		m := New(&fakeMail{err: boom}, instrument.NewNoop())

		// Act
		err := m.SendOTP(context.Background(), usecase.OTPMail{To: "x@example.com"})

		// Assert
		assert.ErrorIs(t, err, boom)
	})
}
