package scheduler

import "github.com/jbattermann/observable/types"

// Inline runs every scheduled function synchronously on the calling
// goroutine.
//
// This is the default scheduler of the dictionary: notification delivery
// completes before the mutating call returns, and an unhandled observer
// failure surfaces as that call's error.
type Inline struct{}

// Compile-time assertion that Inline implements Scheduler.
var _ types.Scheduler = Inline{}

// NewInline creates an inline scheduler.
//
// Returns:
//   - Inline: A scheduler running callbacks on the caller's goroutine
func NewInline() Inline {
	return Inline{}
}

// Schedule runs fn immediately.
func (Inline) Schedule(fn func()) {
	fn()
}
