package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the observable library.
//
// These errors provide type-safe error checking using errors.Is() and errors.As().
// All components should use these sentinel errors for known error conditions
// and wrap external errors with context using fmt.Errorf("%s: %w", msg, err).

// Dictionary errors - Public API errors returned by the Dictionary.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrClosed is returned by every operation on a closed dictionary.
	ErrClosed = errors.New("dictionary is closed")

	// ErrNilKey is returned when a nil pointer or nil interface is used as a key.
	ErrNilKey = errors.New("key must not be nil")

	// ErrKeyAlreadyExists is returned by Add when the key is already present.
	ErrKeyAlreadyExists = errors.New("key already exists")

	// ErrKeyNotFound is returned by strict operations on an absent key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidThreshold is returned when a negative reset threshold is configured.
	ErrInvalidThreshold = errors.New("reset threshold must not be negative")
)

// Notification errors - errors raised by the notification pipeline.
var (
	// ErrAlreadySuppressed is returned when a second suppression of the same
	// notification gate is started while one is still active.
	ErrAlreadySuppressed = errors.New("notifications of this kind are already suppressed")

	// ErrObserverPanic indicates a subscriber panicked during notification
	// delivery and no observer marked the failure as handled.
	ErrObserverPanic = errors.New("observer panicked during notification delivery")

	// ErrInvalidChange is returned by Change.Validate for field combinations
	// that are invalid for the change kind.
	ErrInvalidChange = errors.New("invalid change")
)

// DuplicateKeysError reports the keys of a bulk add that were already present.
//
// Returned by AddRange when at least one item could not be added. The
// remaining items of the batch are still processed; this error only lists
// the ones that were not.
type DuplicateKeysError[K comparable] struct {
	// Keys are the keys that already existed, in batch order.
	Keys []K
}

// Error implements the error interface.
func (e *DuplicateKeysError[K]) Error() string {
	return fmt.Sprintf("%d key(s) already exist: %s", len(e.Keys), formatKeys(e.Keys))
}

// Unwrap exposes ErrKeyAlreadyExists so callers can match with errors.Is.
func (e *DuplicateKeysError[K]) Unwrap() error {
	return ErrKeyAlreadyExists
}

// MissingKeysError reports the keys of a bulk remove that were not present
// (or, for pair-wise removal, whose stored value did not match).
type MissingKeysError[K comparable] struct {
	// Keys are the keys that could not be removed, in batch order.
	Keys []K
}

// Error implements the error interface.
func (e *MissingKeysError[K]) Error() string {
	return fmt.Sprintf("%d key(s) not found: %s", len(e.Keys), formatKeys(e.Keys))
}

// Unwrap exposes ErrKeyNotFound so callers can match with errors.Is.
func (e *MissingKeysError[K]) Unwrap() error {
	return ErrKeyNotFound
}

func formatKeys[K comparable](keys []K) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%v", k))
	}

	return strings.Join(parts, ", ")
}
