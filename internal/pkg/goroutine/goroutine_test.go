package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTask = errors.New("task failed")

func TestManager_RunsAndCollects(t *testing.T) {
	// Arrange
	m := NewManager(4)
	var ran atomic.Int32

	// Act
	for range 3 {
		require.True(t, m.Go(context.Background(), "count", func(context.Context) error {
			ran.Add(1)
			return nil
		}))
	}
	m.Go(context.Background(), "fail", func(context.Context) error { return errTask })
	err := m.Wait()

	// Assert
	assert.Equal(t, int32(3), ran.Load())
	assert.ErrorIs(t, err, errTask)
}

func TestManager_KeepsBoundedErrors(t *testing.T) {
	// Arrange
	m := NewManager(maxKeptErrors * 4)
	total := maxKeptErrors + 36

	// Act
	for range total {
		require.True(t, m.Go(context.Background(), "fail", func(context.Context) error { return errTask }))
	}
	err := m.Wait()

	// Assert
	assert.ErrorIs(t, err, errTask)
	assert.Len(t, m.errs, maxKeptErrors)
	assert.Equal(t, 36, m.dropped)
	assert.Contains(t, err.Error(), "36 more task errors not kept")
}

func TestManager_RecoversPanic(t *testing.T) {
	m := NewManager(1)

	m.Go(context.Background(), "boom", func(context.Context) error { panic("boom") })

	assert.ErrorIs(t, m.Wait(), ErrPanic)
}

func TestManager_Saturated(t *testing.T) {
	// Arrange
	m := NewManager(1)
	release := make(chan struct{})
	started := make(chan struct{})
	m.Go(context.Background(), "block", func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	// Act
	ok := m.Go(context.Background(), "second", func(context.Context) error { return nil })
	close(release)

	// Assert
	assert.False(t, ok)
	assert.NoError(t, m.Wait())
}

func TestManager_ClosedAndNil(t *testing.T) {
	m := NewManager(0)
	require.NoError(t, m.Wait())

	assert.False(t, m.Go(context.Background(), "late", func(context.Context) error { return nil }))

	var nilManager *Manager
	assert.False(t, nilManager.Go(context.Background(), "nil", nil))
	assert.NoError(t, nilManager.Wait())
}
