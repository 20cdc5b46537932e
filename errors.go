package observable

import "github.com/jbattermann/observable/types"

// Sentinel errors returned by the Dictionary. These alias the definitions in
// the types package so both import paths match with errors.Is.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = types.ErrInvalidConfig

	// ErrClosed is returned by every operation on a closed dictionary.
	ErrClosed = types.ErrClosed

	// ErrNilKey is returned when a nil pointer or nil interface is used as a key.
	ErrNilKey = types.ErrNilKey

	// ErrKeyAlreadyExists is returned by Add when the key is already present.
	ErrKeyAlreadyExists = types.ErrKeyAlreadyExists

	// ErrKeyNotFound is returned by strict operations on an absent key.
	ErrKeyNotFound = types.ErrKeyNotFound

	// ErrInvalidThreshold is returned when a negative reset threshold is configured.
	ErrInvalidThreshold = types.ErrInvalidThreshold

	// ErrAlreadySuppressed is returned when a second suppression of the same
	// notification gate is started while one is still active.
	ErrAlreadySuppressed = types.ErrAlreadySuppressed

	// ErrObserverPanic indicates a subscriber panicked during notification
	// delivery and no observer marked the failure as handled.
	ErrObserverPanic = types.ErrObserverPanic

	// ErrInvalidChange is reported for change records whose field combination
	// is invalid for their kind.
	ErrInvalidChange = types.ErrInvalidChange
)
