package types

// Scheduler decides on which execution context notification callbacks run.
//
// The dictionary hands every legacy event callback (property-changed,
// collection-changed) to the configured Scheduler. The default is an inline
// scheduler that runs callbacks synchronously on the mutating caller's
// goroutine; a deferring scheduler (e.g. a serial queue feeding a UI loop)
// makes delivery asynchronous relative to the mutating call but must preserve
// submission order (FIFO).
//
// There is deliberately no ambient fallback: the delivery policy is always an
// explicit construction-time choice.
type Scheduler interface {
	// Schedule submits fn for execution. Implementations must execute
	// submitted functions in submission order and must not drop them.
	Schedule(fn func())
}
