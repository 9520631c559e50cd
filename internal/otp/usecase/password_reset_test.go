package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/assetly/internal/otp/entity"
	"github.com/shandysiswandi/assetly/internal/pkg/goerror"
	"github.com/shandysiswandi/assetly/internal/pkg/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validateOne(t *testing.T, f *fixture, code string) {
	t.Helper()
	ok, err := f.uc.Validate(context.Background(), ValidateInput{Email: "a@x.com", Code: code})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUsecase_HasRecentlyValidated(t *testing.T) {
	// Arrange
	f := newFixture(t, "", "482913")
	ctx := context.Background()

	before, err := f.uc.HasRecentlyValidated(ctx, "a@x.com")
	require.NoError(t, err)

	issueOne(t, f)
	validateOne(t, f, "482913")

	// Act
	recent, errRecent := f.uc.HasRecentlyValidated(ctx, "A@x.com")
	f.clock.Advance(5 * time.Minute)
	stale, errStale := f.uc.HasRecentlyValidated(ctx, "a@x.com")
	unknown, errUnknown := f.uc.HasRecentlyValidated(ctx, "ghost@x.com")

	// Assert
	assert.False(t, before)
	require.NoError(t, errRecent)
	require.NoError(t, errStale)
	require.NoError(t, errUnknown)
	assert.True(t, recent)
	assert.False(t, stale)
	assert.False(t, unknown)
}

func TestUsecase_PasswordReset(t *testing.T) {
	in := PasswordResetInput{Email: "a@x.com", NewPassword: "n3w-password", ConfirmPassword: "n3w-password"}

	t.Run("succeeds once after validation", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "", "482913")
		ctx := context.Background()
		issueOne(t, f)
		validateOne(t, f, "482913")

		// Act
		errFirst := f.uc.PasswordReset(ctx, in)
		errSecond := f.uc.PasswordReset(ctx, in)
		f.drain(t)

		// Assert
		require.NoError(t, errFirst)
		assert.ErrorIs(t, errSecond, entity.ErrResetNotAllowed)
		requireGoerrorCode(t, errSecond, goerror.CodeBadRequest)

		stored := f.db.password[testAccount.ID]
		require.NotEmpty(t, stored)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("n3w-password")))
		assert.Empty(t, f.db.all(), "used codes are consumed by the reset")
		assert.Contains(t, f.mq.types(), entity.EventPasswordReset)
	})

	t.Run("requires a validation", func(t *testing.T) {
		f := newFixture(t, "")
		issueOne(t, f)

		err := f.uc.PasswordReset(context.Background(), in)

		assert.ErrorIs(t, err, entity.ErrResetNotAllowed)
		assert.Empty(t, f.db.password)
	})

	t.Run("window elapsed", func(t *testing.T) {
		f := newFixture(t, "", "482913")
		issueOne(t, f)
		validateOne(t, f, "482913")
		f.clock.Advance(6 * time.Minute)

		err := f.uc.PasswordReset(context.Background(), in)

		assert.ErrorIs(t, err, entity.ErrResetNotAllowed)
	})

	t.Run("unknown account looks like a missing validation", func(t *testing.T) {
		f := newFixture(t, "")

		err := f.uc.PasswordReset(context.Background(), PasswordResetInput{
			Email: "ghost@x.com", NewPassword: "n3w-password", ConfirmPassword: "n3w-password",
		})

		assert.ErrorIs(t, err, entity.ErrResetNotAllowed)
	})

	t.Run("mismatched and short passwords are invalid input", func(t *testing.T) {
		f := newFixture(t, "")

		errMismatch := f.uc.PasswordReset(context.Background(), PasswordResetInput{
			Email: "a@x.com", NewPassword: "n3w-password", ConfirmPassword: "other-password",
		})
		errShort := f.uc.PasswordReset(context.Background(), PasswordResetInput{
			Email: "a@x.com", NewPassword: "short", ConfirmPassword: "short",
		})

		requireGoerrorCode(t, errMismatch, goerror.CodeInvalidInput)
		requireGoerrorCode(t, errShort, goerror.CodeInvalidInput)
	})

	t.Run("password too long once peppered is invalid input", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "", "482913")
		f.uc.passwordHash = hash.NewBcrypt(4, strings.Repeat("p", 32))
		issueOne(t, f)
		validateOne(t, f, "482913")
		long := strings.Repeat("x", 60)

		// Act
		err := f.uc.PasswordReset(context.Background(), PasswordResetInput{
			Email: "a@x.com", NewPassword: long, ConfirmPassword: long,
		})

		// Assert
		requireGoerrorCode(t, err, goerror.CodeInvalidInput)
		var gerr *goerror.Error
		require.ErrorAs(t, err, &gerr)
		assert.Contains(t, gerr.Fields(), "new_password")
		assert.Empty(t, f.db.password)
	})
}
