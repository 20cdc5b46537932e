package types

import (
	"fmt"
	"sync/atomic"
)

// ObserverError packages a panic raised by a subscriber during notification
// delivery.
//
// Delivery to each subscriber is isolated: a panicking handler never prevents
// other channels or handlers from being attempted. The recovered panic is
// wrapped in an ObserverError and published on the observer-errors surface.
// Any handler of that surface may call MarkHandled to absorb the failure; if
// nobody does, the error is propagated to the caller of the mutating
// operation that triggered the notification.
type ObserverError struct {
	// Channel names the delivery surface on which the subscriber panicked,
	// e.g. "collectionChanged" or "propertyChanged".
	Channel string

	// Recovered is the value recovered from the panicking subscriber.
	Recovered any

	handled atomic.Bool
}

// NewObserverError creates an ObserverError for a recovered subscriber panic.
func NewObserverError(channel string, recovered any) *ObserverError {
	return &ObserverError{Channel: channel, Recovered: recovered}
}

// MarkHandled flags the error as handled, preventing propagation to the
// caller of the mutating operation.
func (e *ObserverError) MarkHandled() {
	e.handled.Store(true)
}

// Handled reports whether any observer marked the error as handled.
func (e *ObserverError) Handled() bool {
	return e.handled.Load()
}

// Error implements the error interface.
func (e *ObserverError) Error() string {
	return fmt.Sprintf("observer panicked on %s channel: %v", e.Channel, e.Recovered)
}

// Unwrap exposes ErrObserverPanic so callers can match with errors.Is.
func (e *ObserverError) Unwrap() error {
	return ErrObserverPanic
}
