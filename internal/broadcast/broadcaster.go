// Package broadcast owns the change stream of an observable dictionary and
// every surface derived from it: filtered channels, the de-duplicated count
// channel, collection-shaped projections and the legacy callback events.
package broadcast

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/jbattermann/observable/internal/gate"
	"github.com/jbattermann/observable/types"
)

// Broadcaster fans dictionary changes out to subscribers.
//
// All emissions funnel through Emit, which serializes delivery so that every
// channel observes changes in mutation order (FIFO per channel). Channel
// subscribers receive values through buffered channels and can never fail
// delivery; callback handlers (the legacy event surface) run through the
// configured Scheduler and are individually panic-isolated.
type Broadcaster[K comparable, V any] struct {
	gates     *gate.Set
	logger    types.Logger
	metrics   types.MetricsCollector
	scheduler types.Scheduler

	// emitMu serializes channel publication and the count dedup state. It
	// is released before the legacy callback handlers run, so a handler
	// that mutates the dictionary re-enters Emit instead of deadlocking.
	emitMu sync.Mutex

	changeSubs         *registry[types.Change[K, V]]
	keyChangeSubs      *registry[types.Change[K, V]]
	valueChangeSubs    *registry[types.Change[K, V]]
	resetSubs          *registry[struct{}]
	countSubs          *registry[int]
	collectionSubs     *registry[types.CollectionChange[K, V]]
	collectionItemSubs *registry[types.CollectionChange[K, V]]
	errorSubs          *registry[*types.ObserverError]

	propertyHandlers   *handlerRegistry[string]
	collectionHandlers *handlerRegistry[types.CollectionChange[K, V]]
	errorHandlers      *handlerRegistry[*types.ObserverError]

	// De-duplication state of the count channel: the last count actually
	// emitted. Counts skipped while the count gate is suppressed do not
	// advance this, so a resume signal only fires if the count really moved.
	lastCount      int
	lastCountValid bool

	closed atomic.Bool
}

// New creates a Broadcaster.
//
// Parameters:
//   - gates: The dictionary's notification gates
//   - buffer: Per-subscriber channel buffer size
//   - logger: Logger for dropped notifications and observer panics
//   - metrics: Metrics collector for emission accounting
//   - scheduler: Execution context for legacy callback handlers
//
// Returns:
//   - *Broadcaster: A new broadcaster with no subscribers
func New[K comparable, V any](
	gates *gate.Set,
	buffer int,
	logger types.Logger,
	metrics types.MetricsCollector,
	scheduler types.Scheduler,
) *Broadcaster[K, V] {
	return &Broadcaster[K, V]{
		gates:              gates,
		logger:             logger,
		metrics:            metrics,
		scheduler:          scheduler,
		changeSubs:         newRegistry[types.Change[K, V]]("changes", buffer, logger, metrics),
		keyChangeSubs:      newRegistry[types.Change[K, V]]("keyChanges", buffer, logger, metrics),
		valueChangeSubs:    newRegistry[types.Change[K, V]]("valueChanges", buffer, logger, metrics),
		resetSubs:          newRegistry[struct{}]("resets", buffer, logger, metrics),
		countSubs:          newRegistry[int]("count", buffer, logger, metrics),
		collectionSubs:     newRegistry[types.CollectionChange[K, V]]("collectionChanges", buffer, logger, metrics),
		collectionItemSubs: newRegistry[types.CollectionChange[K, V]]("collectionItemChanges", buffer, logger, metrics),
		errorSubs:          newRegistry[*types.ObserverError]("observerErrors", buffer, logger, metrics),
		propertyHandlers:   newHandlerRegistry[string](),
		collectionHandlers: newHandlerRegistry[types.CollectionChange[K, V]](),
		errorHandlers:      newHandlerRegistry[*types.ObserverError](),
	}
}

// Gates returns the broadcaster's notification gates.
func (b *Broadcaster[K, V]) Gates() *gate.Set {
	return b.gates
}

// Emit runs one change through the full notification pipeline: gate checks,
// the raw change channel and its filtered derivatives, the de-duplicated
// count channel, collection-shaped projections, and the legacy callback
// events.
//
// The mutation the change describes must already be durably visible in the
// store before Emit is called; count must be the store's size after the
// mutation.
//
// Returns:
//   - error: types.ErrClosed after Close; otherwise the joined unhandled
//     observer errors raised synchronously during delivery, nil when
//     delivery completed cleanly
func (b *Broadcaster[K, V]) Emit(c types.Change[K, V], count int) error {
	b.emitMu.Lock()

	if b.closed.Load() {
		b.emitMu.Unlock()
		return types.ErrClosed
	}
	if !b.gates.Changes.Enabled() {
		b.emitMu.Unlock()
		return nil
	}

	isReset := c.Kind == types.ChangeReset
	if isReset && !b.gates.Resets.Enabled() {
		b.emitMu.Unlock()
		return nil
	}
	if !isReset && !b.gates.ItemChanges.Enabled() {
		b.emitMu.Unlock()
		return nil
	}

	b.metrics.RecordEmit(c.Kind.String())

	// Raw change channel and filtered derivatives.
	b.changeSubs.publish(c)
	switch c.Kind {
	case types.ChangeReset:
		b.resetSubs.publish(struct{}{})
	case types.ChangeItemKeyChanged:
		b.keyChangeSubs.publish(c)
	case types.ChangeItemValueChanged, types.ChangeItemValueReplaced:
		b.valueChangeSubs.publish(c)
	}

	// The count channel reacts to count-affecting kinds only; value
	// replacements and property changes leave the count untouched.
	countPublished := false
	if countAffecting(c.Kind) {
		countPublished = b.publishCountLocked(count)
	}

	// Collection-shaped projections.
	projections := c.ToCollectionChanges()
	for _, cc := range projections {
		b.collectionSubs.publish(cc)
		if cc.Kind != types.CollectionReset {
			b.collectionItemSubs.publish(cc)
		}
	}

	// Channel publication is done; release emitMu before running the legacy
	// callbacks. An inline-scheduled handler is free to mutate the
	// dictionary, which re-enters Emit; invoking it under the lock would
	// deadlock that mutation. Channel FIFO is unaffected, only handler
	// invocations from concurrent emissions may interleave.
	b.emitMu.Unlock()

	var collector panicCollector
	for _, cc := range projections {
		b.invokeCollectionHandlers(cc, &collector)
	}
	if countPublished {
		b.invokePropertyHandlers(types.PropertyCount, &collector)
	}
	b.invokePropertyHandlers(types.PropertyIndexer, &collector)

	return collector.err()
}

// SignalCount re-emits the dictionary's current count through the
// de-duplicated count channel, used when a count suppression is released
// with the catch-up signal enabled. Nothing is emitted if the count did not
// change since it was last reported.
func (b *Broadcaster[K, V]) SignalCount(count int) error {
	b.emitMu.Lock()

	if b.closed.Load() {
		b.emitMu.Unlock()
		return types.ErrClosed
	}

	published := b.publishCountLocked(count)
	b.emitMu.Unlock()

	var collector panicCollector
	if published {
		b.invokePropertyHandlers(types.PropertyCount, &collector)
	}

	return collector.err()
}

// publishCountLocked publishes count if the count gate is open and the value
// differs from the last emitted one. Callers hold emitMu.
func (b *Broadcaster[K, V]) publishCountLocked(count int) bool {
	if !b.gates.CountChanges.Enabled() {
		return false
	}
	if b.lastCountValid && b.lastCount == count {
		return false
	}

	b.lastCount = count
	b.lastCountValid = true
	b.countSubs.publish(count)

	return true
}

// SubscribeChanges returns the stream of every emitted change record.
func (b *Broadcaster[K, V]) SubscribeChanges() (<-chan types.Change[K, V], func()) {
	return b.changeSubs.subscribe()
}

// SubscribeKeyChanges returns the stream filtered to key property changes.
func (b *Broadcaster[K, V]) SubscribeKeyChanges() (<-chan types.Change[K, V], func()) {
	return b.keyChangeSubs.subscribe()
}

// SubscribeValueChanges returns the stream filtered to value property changes
// and value replacements.
func (b *Broadcaster[K, V]) SubscribeValueChanges() (<-chan types.Change[K, V], func()) {
	return b.valueChangeSubs.subscribe()
}

// SubscribeResets returns the stream of reset signals.
func (b *Broadcaster[K, V]) SubscribeResets() (<-chan struct{}, func()) {
	return b.resetSubs.subscribe()
}

// SubscribeCount returns the de-duplicated count stream.
func (b *Broadcaster[K, V]) SubscribeCount() (<-chan int, func()) {
	return b.countSubs.subscribe()
}

// SubscribeCollectionChanges returns the collection-shaped projection of the
// change stream.
func (b *Broadcaster[K, V]) SubscribeCollectionChanges() (<-chan types.CollectionChange[K, V], func()) {
	return b.collectionSubs.subscribe()
}

// SubscribeCollectionItemChanges returns the collection-shaped projection
// filtered to item-level entries (resets excluded).
func (b *Broadcaster[K, V]) SubscribeCollectionItemChanges() (<-chan types.CollectionChange[K, V], func()) {
	return b.collectionItemSubs.subscribe()
}

// SubscribeObserverErrors returns the stream of packaged observer panics.
func (b *Broadcaster[K, V]) SubscribeObserverErrors() (<-chan *types.ObserverError, func()) {
	return b.errorSubs.subscribe()
}

// OnPropertyChanged registers a legacy property-changed handler. The handler
// receives types.PropertyCount after count-affecting changes and
// types.PropertyIndexer after every change.
func (b *Broadcaster[K, V]) OnPropertyChanged(handler func(propertyName string)) (remove func()) {
	return b.propertyHandlers.add(handler)
}

// OnCollectionChanged registers a legacy collection-changed handler.
func (b *Broadcaster[K, V]) OnCollectionChanged(handler func(types.CollectionChange[K, V])) (remove func()) {
	return b.collectionHandlers.add(handler)
}

// OnObserverError registers a handler for packaged observer panics. Calling
// MarkHandled on the received error absorbs the failure; otherwise it is
// propagated to the caller of the mutating operation.
func (b *Broadcaster[K, V]) OnObserverError(handler func(*types.ObserverError)) (remove func()) {
	return b.errorHandlers.add(handler)
}

// Close permanently closes every subscriber channel and drops all handlers.
// Close is idempotent.
func (b *Broadcaster[K, V]) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}

	b.changeSubs.closeAll()
	b.keyChangeSubs.closeAll()
	b.valueChangeSubs.closeAll()
	b.resetSubs.closeAll()
	b.countSubs.closeAll()
	b.collectionSubs.closeAll()
	b.collectionItemSubs.closeAll()
	b.errorSubs.closeAll()

	b.propertyHandlers.clear()
	b.collectionHandlers.clear()
	b.errorHandlers.clear()
}

func (b *Broadcaster[K, V]) invokeCollectionHandlers(cc types.CollectionChange[K, V], collector *panicCollector) {
	b.collectionHandlers.each(func(handler func(types.CollectionChange[K, V])) {
		b.scheduler.Schedule(func() {
			defer b.recoverObserver("collectionChanged", collector)
			handler(cc)
		})
	})
}

func (b *Broadcaster[K, V]) invokePropertyHandlers(propertyName string, collector *panicCollector) {
	b.propertyHandlers.each(func(handler func(string)) {
		b.scheduler.Schedule(func() {
			defer b.recoverObserver("propertyChanged", collector)
			handler(propertyName)
		})
	})
}

// recoverObserver packages a subscriber panic, publishes it on the
// observer-errors surface and, when no observer marks it handled, records it
// with the collector. When the scheduler defers execution the collector's
// owner has already returned; the unhandled error is then only logged.
func (b *Broadcaster[K, V]) recoverObserver(channel string, collector *panicCollector) {
	r := recover()
	if r == nil {
		return
	}

	oe := types.NewObserverError(channel, r)
	b.metrics.RecordObserverPanic(channel)
	b.logger.Error("observer panicked during notification delivery", "channel", channel, "panic", r)

	b.errorHandlers.each(func(handler func(*types.ObserverError)) {
		func() {
			// An error handler panicking must not take down delivery.
			defer func() {
				if hr := recover(); hr != nil {
					b.logger.Error("observer-error handler panicked", "channel", channel, "panic", hr)
				}
			}()
			handler(oe)
		}()
	})
	b.errorSubs.publish(oe)

	if !oe.Handled() {
		collector.add(oe)
	}
}

func countAffecting(kind types.ChangeKind) bool {
	switch kind {
	case types.ChangeItemAdded, types.ChangeItemRemoved, types.ChangeReset:
		return true
	default:
		return false
	}
}

// panicCollector accumulates unhandled observer errors raised synchronously
// during one emission.
type panicCollector struct {
	mu   sync.Mutex
	errs []error
}

func (p *panicCollector) add(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = append(p.errs, err)
}

func (p *panicCollector) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.errs) == 0 {
		return nil
	}

	return errors.Join(p.errs...)
}
