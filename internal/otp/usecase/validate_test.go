package usecase

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/shandysiswandi/assetly/internal/otp/entity"
	"github.com/shandysiswandi/assetly/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueOne(t *testing.T, f *fixture) {
	t.Helper()
	_, err := f.uc.Issue(context.Background(), IssueInput{Email: "a@x.com"})
	require.NoError(t, err)
}

func TestUsecase_Validate_Scenario(t *testing.T) {
	// Arrange
	f := newFixture(t, "", "482913")
	ctx := context.Background()
	issueOne(t, f)

	// Act & Assert: three wrong codes count down the remaining attempts
	for _, want := range []int{4, 3, 2} {
		ok, err := f.uc.Validate(ctx, ValidateInput{Email: "a@x.com", Code: "482910"})
		require.False(t, ok)

		var invalid *entity.InvalidOTPError
		require.True(t, errors.As(err, &invalid), "got %v", err)
		assert.Equal(t, want, invalid.Remaining)

		var gerr *goerror.Error
		require.True(t, errors.As(err, &gerr))
		assert.Equal(t, goerror.CodeBadRequest, gerr.Code())
		assert.Equal(t, map[string]string{"remaining_attempts": strconv.Itoa(want)}, gerr.Fields())
	}

	ok, err := f.uc.Validate(ctx, ValidateInput{Email: "a@x.com", Code: "482913"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.uc.Validate(ctx, ValidateInput{Email: "a@x.com", Code: "482913"})
	require.NoError(t, err)
	assert.False(t, ok)

	records := f.db.all()
	require.Len(t, records, 1)
	assert.True(t, records[0].Used)
	assert.Equal(t, 3, records[0].Attempts)

	f.drain(t)
	assert.True(t, containsAll(f.mq.types(), entity.EventOTPIssued, entity.EventOTPRejected, entity.EventOTPValidated))
}

func TestUsecase_Validate_Lockout(t *testing.T) {
	// Arrange
	f := newFixture(t, "", "482913")
	ctx := context.Background()
	issueOne(t, f)

	// Act
	for i := 1; i <= 4; i++ {
		_, err := f.uc.Validate(ctx, ValidateInput{Email: "a@x.com", Code: "000000"})
		var invalid *entity.InvalidOTPError
		require.True(t, errors.As(err, &invalid))
		require.Equal(t, 5-i, invalid.Remaining)
	}
	_, fifth := f.uc.Validate(ctx, ValidateInput{Email: "a@x.com", Code: "000000"})
	ok, afterLock := f.uc.Validate(ctx, ValidateInput{Email: "a@x.com", Code: "482913"})

	// Assert
	assert.ErrorIs(t, fifth, entity.ErrTooManyAttempts)
	requireGoerrorCode(t, fifth, goerror.CodeBadRequest)
	assert.False(t, ok)
	assert.ErrorIs(t, afterLock, entity.ErrTooManyAttempts)

	records := f.db.all()
	require.Len(t, records, 1)
	assert.Equal(t, 5, records[0].Attempts)
	assert.False(t, records[0].Used)
}

func TestUsecase_Validate_Expired(t *testing.T) {
	// Arrange
	f := newFixture(t, "", "482913")
	issueOne(t, f)
	f.clock.Advance(10*time.Minute + time.Second)

	// Act
	okWrong, errWrong := f.uc.Validate(context.Background(), ValidateInput{Email: "a@x.com", Code: "111111"})
	okRight, errRight := f.uc.Validate(context.Background(), ValidateInput{Email: "a@x.com", Code: "482913"})

	// Assert
	require.NoError(t, errWrong)
	require.NoError(t, errRight)
	assert.False(t, okWrong)
	assert.False(t, okRight)
	assert.Zero(t, f.db.all()[0].Attempts)
}

func TestUsecase_Validate_AtExpiryInstant(t *testing.T) {
	f := newFixture(t, "", "482913")
	issueOne(t, f)
	f.clock.Advance(10 * time.Minute)

	ok, err := f.uc.Validate(context.Background(), ValidateInput{Email: "a@x.com", Code: "482913"})

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUsecase_Validate_OnlyLatestCodeCounts(t *testing.T) {
	// Arrange
	f := newFixture(t, "", "111111", "222222")
	ctx := context.Background()
	issueOne(t, f)
	f.clock.Advance(time.Second)
	issueOne(t, f)

	// Act
	_, errOld := f.uc.Validate(ctx, ValidateInput{Email: "a@x.com", Code: "111111"})
	okNew, errNew := f.uc.Validate(ctx, ValidateInput{Email: "a@x.com", Code: "222222"})

	// Assert
	var invalid *entity.InvalidOTPError
	assert.True(t, errors.As(errOld, &invalid))
	require.NoError(t, errNew)
	assert.True(t, okNew)
}

func TestUsecase_Validate_TieBrokenByHighestID(t *testing.T) {
	// Arrange
	f := newFixture(t, "", "111111", "222222")
	issueOne(t, f)
	issueOne(t, f)

	// Act
	ok, err := f.uc.Validate(context.Background(), ValidateInput{Email: "a@x.com", Code: "222222"})

	// Assert
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUsecase_Validate_NoDisclosure(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	okUnknown, errUnknown := f.uc.Validate(ctx, ValidateInput{Email: "ghost@x.com", Code: "482913"})
	okNoCode, errNoCode := f.uc.Validate(ctx, ValidateInput{Email: "a@x.com", Code: "482913"})

	require.NoError(t, errUnknown)
	require.NoError(t, errNoCode)
	assert.False(t, okUnknown)
	assert.False(t, okNoCode)
}

func TestUsecase_Validate_Errors(t *testing.T) {
	t.Run("missing code is invalid input", func(t *testing.T) {
		f := newFixture(t, "")

		_, err := f.uc.Validate(context.Background(), ValidateInput{Email: "a@x.com", Code: "  "})

		requireGoerrorCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("failed save rolls back and reports a server error", func(t *testing.T) {
		// Arrange
		f := newFixture(t, "", "482913")
		issueOne(t, f)
		f.db.errSave = errStore

		// Act
		ok, err := f.uc.Validate(context.Background(), ValidateInput{Email: "a@x.com", Code: "000000"})

		// Assert
		assert.False(t, ok)
		requireGoerrorCode(t, err, goerror.CodeInternal)
		assert.Zero(t, f.db.all()[0].Attempts)
	})
}
