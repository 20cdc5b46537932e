// Package gate implements the notification gates: per-instance switches that
// control whether a class of notifications is currently delivered.
//
// Each gate is an atomic state cell. Suppression is a compare-and-swap
// transition; a second suppression while one is active is a contract
// violation, not a queued wait.
package gate

import (
	"fmt"
	"sync/atomic"

	"github.com/jbattermann/observable/types"
)

// Gate is a single notification switch.
//
// A gate starts open (tracking). At most one suppression can be outstanding
// at a time; Resume reopens the gate.
type Gate struct {
	name       string
	suppressed atomic.Bool
}

// NewGate creates an open gate with the given name. The name appears in
// errors and log fields.
func NewGate(name string) *Gate {
	return &Gate{name: name}
}

// Name returns the gate's name.
func (g *Gate) Name() string {
	return g.name
}

// Enabled reports whether notifications governed by this gate are currently
// delivered.
func (g *Gate) Enabled() bool {
	return !g.suppressed.Load()
}

// Suppress closes the gate.
//
// Returns:
//   - error: types.ErrAlreadySuppressed (wrapped with the gate name) if a
//     suppression is already active, nil otherwise
func (g *Gate) Suppress() error {
	if !g.suppressed.CompareAndSwap(false, true) {
		return fmt.Errorf("%s: %w", g.name, types.ErrAlreadySuppressed)
	}

	return nil
}

// Resume reopens the gate. Resuming an open gate is a no-op.
func (g *Gate) Resume() {
	g.suppressed.Store(false)
}

// Set groups the four notification gates of one dictionary instance.
type Set struct {
	// Changes is the master switch for every change notification.
	Changes *Gate

	// ItemChanges gates item-kind change records (everything except Reset).
	ItemChanges *Gate

	// Resets gates Reset change records.
	Resets *Gate

	// CountChanges gates the count-changes channel.
	CountChanges *Gate
}

// NewSet creates the four gates, all open.
func NewSet() *Set {
	return &Set{
		Changes:      NewGate("changes"),
		ItemChanges:  NewGate("itemChanges"),
		Resets:       NewGate("resets"),
		CountChanges: NewGate("countChanges"),
	}
}
