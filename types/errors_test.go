package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	t.Run("errors.Is works correctly", func(t *testing.T) {
		require.True(t, errors.Is(ErrClosed, ErrClosed))
		require.False(t, errors.Is(ErrClosed, ErrNilKey))

		// Wrapped errors maintain identity.
		wrapped := fmt.Errorf("add: %w", ErrKeyAlreadyExists)
		require.True(t, errors.Is(wrapped, ErrKeyAlreadyExists))
	})

	t.Run("all errors are distinct", func(t *testing.T) {
		allErrors := []error{
			// Dictionary errors
			ErrInvalidConfig,
			ErrClosed,
			ErrNilKey,
			ErrKeyAlreadyExists,
			ErrKeyNotFound,
			ErrInvalidThreshold,
			// Notification errors
			ErrAlreadySuppressed,
			ErrObserverPanic,
			ErrInvalidChange,
		}

		for i, err1 := range allErrors {
			for j, err2 := range allErrors {
				if i == j {
					require.True(t, errors.Is(err1, err2), "error should equal itself: %v", err1)
				} else {
					require.False(t, errors.Is(err1, err2), "errors should be distinct: %v vs %v", err1, err2)
				}
			}
		}
	})
}

func TestDuplicateKeysError(t *testing.T) {
	err := &DuplicateKeysError[string]{Keys: []string{"a", "b"}}

	require.ErrorIs(t, err, ErrKeyAlreadyExists)
	require.Contains(t, err.Error(), "2 key(s) already exist")
	require.Contains(t, err.Error(), "a, b")

	var dup *DuplicateKeysError[string]
	require.ErrorAs(t, fmt.Errorf("batch: %w", err), &dup)
	require.Equal(t, []string{"a", "b"}, dup.Keys)
}

func TestMissingKeysError(t *testing.T) {
	err := &MissingKeysError[int]{Keys: []int{3}}

	require.ErrorIs(t, err, ErrKeyNotFound)
	require.Contains(t, err.Error(), "1 key(s) not found")

	var missing *MissingKeysError[int]
	require.ErrorAs(t, fmt.Errorf("batch: %w", err), &missing)
	require.Equal(t, []int{3}, missing.Keys)
}

func TestObserverError(t *testing.T) {
	t.Run("carries channel and recovered value", func(t *testing.T) {
		oe := NewObserverError("changes", "boom")
		require.Contains(t, oe.Error(), "changes")
		require.Contains(t, oe.Error(), "boom")
		require.ErrorIs(t, oe, ErrObserverPanic)
	})

	t.Run("handled flag latches", func(t *testing.T) {
		oe := NewObserverError("count", 1)
		require.False(t, oe.Handled())
		oe.MarkHandled()
		require.True(t, oe.Handled())
		oe.MarkHandled()
		require.True(t, oe.Handled())
	})
}
