// Package forward bridges per-item property-change notifications into the
// dictionary's own change pipeline.
//
// Keys and values that implement the types.ObservableItem capability are
// subscribed to when they enter the dictionary and unsubscribed from,
// synchronously, when they leave. A departed item therefore never produces
// another dictionary notification, no matter who still holds a reference to
// it.
package forward

import (
	"errors"
	"sync"

	"github.com/jbattermann/observable/internal/coalesce"
	"github.com/jbattermann/observable/types"
)

// Forwarder manages the property-change subscriptions of one dictionary.
//
// The forwarder does not own the entries; it only holds the callbacks wired
// into them. Capability detection happens exactly once per attach, and the
// returned detach handle is stored by the dictionary alongside the entry.
type Forwarder[K comparable, V any] struct {
	logger types.Logger

	// threshold yields the dictionary's current reset threshold; the
	// coalescing decision is made per callback, so threshold changes take
	// effect immediately.
	threshold func() int

	// lookup resolves a key to its current value, scoping incoming property
	// changes to entries logically present in the dictionary.
	lookup func(key K) (V, bool)

	// emit routes a translated change into the broadcaster.
	emit func(types.Change[K, V]) error
}

// New creates a Forwarder.
//
// Parameters:
//   - threshold: Supplier of the current reset threshold
//   - lookup: Supplier of the current value for a key
//   - emit: Sink routing translated changes into the broadcaster
//   - logger: Logger for delivery failures
func New[K comparable, V any](
	threshold func() int,
	lookup func(key K) (V, bool),
	emit func(types.Change[K, V]) error,
	logger types.Logger,
) *Forwarder[K, V] {
	return &Forwarder[K, V]{
		threshold: threshold,
		lookup:    lookup,
		emit:      emit,
		logger:    logger,
	}
}

// AttachKey subscribes to the key's property changes if the key implements
// the ObservableItem capability.
//
// Returns:
//   - func(): Idempotent detach handle; a no-op when the key is not
//     observable
func (f *Forwarder[K, V]) AttachKey(key K) (detach func()) {
	item, ok := any(key).(types.ObservableItem)
	if !ok {
		return func() {}
	}

	cancel := item.SubscribePropertyChanged(f.callback(key, true))

	return once(cancel)
}

// AttachValue subscribes to the value's property changes if the value
// implements the ObservableItem capability. The value is identified by the
// key it is stored under.
//
// Returns:
//   - func(): Idempotent detach handle; a no-op when the value is not
//     observable
func (f *Forwarder[K, V]) AttachValue(key K, value V) (detach func()) {
	item, ok := any(value).(types.ObservableItem)
	if !ok {
		return func() {}
	}

	cancel := item.SubscribePropertyChanged(f.callback(key, false))

	return once(cancel)
}

// callback translates an external property-change signal into a dictionary
// change.
//
// An unscoped signal (nil sender, empty property name, or a key no longer
// present in the dictionary) escalates to a full Reset, mirroring the
// legacy convention that an empty property name means "everything may have
// changed". Scoped signals pass through the reset-coalescing policy with an
// affected count of one.
func (f *Forwarder[K, V]) callback(key K, isKey bool) types.PropertyChangedFunc {
	return func(sender any, propertyName string) {
		if sender == nil || propertyName == "" {
			f.deliver(types.NewReset[K, V]())
			return
		}

		value, present := f.lookup(key)
		if !present {
			// The item raced its own removal; its change can no longer be
			// scoped to an entry, so subscribers must re-read.
			f.deliver(types.NewReset[K, V]())
			return
		}

		if coalesce.ShouldReset(1, f.threshold()) {
			f.deliver(types.NewReset[K, V]())
			return
		}

		if isKey {
			f.deliver(types.NewItemKeyChanged[K, V](key, propertyName))
		} else {
			f.deliver(types.NewItemValueChanged(key, value, propertyName))
		}
	}
}

// deliver emits a translated change. There is no mutating caller to
// propagate unhandled observer errors to, so they are logged instead.
func (f *Forwarder[K, V]) deliver(c types.Change[K, V]) {
	if err := f.emit(c); err != nil && !errors.Is(err, types.ErrClosed) {
		f.logger.Error("forwarded property change delivery failed", "kind", c.Kind.String(), "error", err)
	}
}

// once wraps a cancel handle so repeated detach calls are harmless.
func once(fn func()) func() {
	var o sync.Once

	return func() {
		o.Do(fn)
	}
}
