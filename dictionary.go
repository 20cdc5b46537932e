package observable

import (
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/jbattermann/observable/internal/broadcast"
	"github.com/jbattermann/observable/internal/coalesce"
	"github.com/jbattermann/observable/internal/forward"
	"github.com/jbattermann/observable/internal/gate"
	"github.com/jbattermann/observable/internal/logging"
	"github.com/jbattermann/observable/internal/metrics"
	"github.com/jbattermann/observable/scheduler"
	"github.com/jbattermann/observable/types"
	"github.com/puzpuzpuz/xsync/v4"
)

// entry is one stored key/value pair together with the property-change
// detach handles captured when the pair entered the dictionary.
type entry[V any] struct {
	value       V
	detachKey   func()
	detachValue func()
}

// detach releases both property-change subscriptions. Handles are idempotent,
// so racing detachers are harmless.
func (e *entry[V]) detach() {
	e.detachKey()
	e.detachValue()
}

// Dictionary is a thread-safe, observable key/value container.
//
// Every mutation (additions, removals, replacements, per-item property
// changes and bulk resets) is exposed as a subscribable change stream,
// alongside callback-style collection-changed/property-changed events for
// data-binding consumers.
//
// Thread Safety:
//   - All methods are safe for concurrent use
//   - The underlying store permits concurrent mutation without external
//     locking; the relative order of concurrent mutations is whatever order
//     the store resolves them in
//   - For a single goroutine performing a sequence of mutations,
//     notifications are delivered in mutation order on every channel, and a
//     notification is only delivered after its mutation is visible in the
//     store
//
// Lifecycle:
//   - Create with New()
//   - Subscribe to change streams, mutate freely
//   - Call Close() to detach all per-item subscriptions, clear the store and
//     complete every subscriber channel
type Dictionary[K comparable, V any] struct {
	cfg Config

	store       *xsync.Map[K, *entry[V]]
	gates       *gate.Set
	broadcaster *broadcast.Broadcaster[K, V]
	forwarder   *forward.Forwarder[K, V]

	// resetThreshold is mutable at any time via SetResetThreshold.
	resetThreshold atomic.Int64

	valueEqual func(a, b V) bool

	logger  types.Logger
	metrics types.MetricsCollector

	closed atomic.Bool
}

// New creates a Dictionary with the provided configuration.
//
// Returns a concrete *Dictionary struct following the "accept interfaces,
// return structs" principle. Consumers can define their own interfaces for
// testing if needed.
//
// Parameters:
//   - cfg: Configuration; nil selects DefaultConfig()
//   - opts: Optional dependencies (logger, metrics, scheduler, value
//     comparer, initial items)
//
// Returns:
//   - *Dictionary: Initialized dictionary instance
//   - error: Validation error if the configuration or initial items are
//     invalid
//
// Example:
//
//	cfg := observable.DefaultConfig()
//	dict, err := observable.New[int, string](&cfg)
//	if err != nil { ... }
//	defer dict.Close()
//
//	changes, unsubscribe := dict.DictionaryChanges()
//	defer unsubscribe()
func New[K comparable, V any](cfg *Config, opts ...Option[K, V]) (*Dictionary[K, V], error) {
	var conf Config
	if cfg == nil {
		conf = DefaultConfig()
	} else {
		conf = *cfg
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	conf = conf.withDefaults()

	options := &dictOptions[K, V]{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = logging.NewNop()
	}
	if options.metrics == nil {
		options.metrics = metrics.NewNop()
	}
	if options.scheduler == nil {
		options.scheduler = scheduler.NewInline()
	}
	if options.valueEqual == nil {
		options.valueEqual = func(a, b V) bool { return reflect.DeepEqual(a, b) }
	}

	d := &Dictionary[K, V]{
		cfg:        conf,
		store:      xsync.NewMap[K, *entry[V]](),
		gates:      gate.NewSet(),
		valueEqual: options.valueEqual,
		logger:     options.logger,
		metrics:    options.metrics,
	}
	d.resetThreshold.Store(int64(conf.ResetThreshold))
	d.broadcaster = broadcast.New[K, V](d.gates, conf.ChannelBufferSize, options.logger, options.metrics, options.scheduler)
	d.forwarder = forward.New(d.ResetThreshold, d.lookup, d.emit, options.logger)

	// Seed initial items: stored and wired, but never announced.
	for _, item := range options.items {
		if isNilKey(item.Key) {
			return nil, ErrNilKey
		}
		ent := d.newAttachedEntry(item.Key, item.Value)
		if _, loaded := d.store.LoadOrStore(item.Key, ent); loaded {
			ent.detach()
			return nil, fmt.Errorf("initial items: %w: %v", ErrKeyAlreadyExists, item.Key)
		}
	}
	d.metrics.RecordSize(d.store.Size())

	return d, nil
}

// Add inserts a new key/value pair.
//
// The emitted change passes through the reset-coalescing policy: with a
// reset threshold of 0 even this single insert surfaces as a Reset.
//
// Parameters:
//   - key: Key to insert; must not be nil and must not already exist
//   - value: Value to store
//
// Returns:
//   - error: ErrKeyAlreadyExists (wrapped with the key) if the key exists,
//     ErrNilKey / ErrClosed on contract violations, or an unhandled observer
//     error raised during notification delivery
func (d *Dictionary[K, V]) Add(key K, value V) error {
	if err := d.guard(key); err != nil {
		return err
	}

	ent := d.newAttachedEntry(key, value)
	if _, loaded := d.store.LoadOrStore(key, ent); loaded {
		ent.detach()
		return fmt.Errorf("%w: %v", ErrKeyAlreadyExists, key)
	}

	d.metrics.RecordMutation("add")
	d.metrics.RecordSize(d.store.Size())

	return d.emitItem(types.NewItemAdded(key, value))
}

// TryAdd is the non-failing variant of Add for duplicate keys.
//
// Returns:
//   - bool: true if the pair was inserted, false if the key already existed
//   - error: ErrNilKey / ErrClosed on contract violations, or an unhandled
//     observer error (the pair was inserted in that case)
func (d *Dictionary[K, V]) TryAdd(key K, value V) (bool, error) {
	err := d.Add(key, value)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrKeyAlreadyExists):
		return false, nil
	case errors.Is(err, ErrObserverPanic):
		return true, err
	default:
		return false, err
	}
}

// AddOrUpdate inserts the pair if the key is absent, otherwise replaces the
// stored value.
//
// An ItemAdded change is emitted for an insert. A replace emits
// ItemValueReplaced carrying both the new and the overwritten value, but
// only if the new value differs from the stored one under the configured
// value comparer; equal values are a no-op. Property-change listeners are
// rewired before the notification is emitted, so subscribers always observe
// a consistently wired dictionary.
//
// Returns:
//   - error: ErrNilKey / ErrClosed on contract violations, or an unhandled
//     observer error raised during notification delivery
func (d *Dictionary[K, V]) AddOrUpdate(key K, value V) error {
	if err := d.guard(key); err != nil {
		return err
	}

	// The compare-and-swap runs inside Compute so the entry detached below
	// is exactly the one displaced from the store. Two racing replaces of
	// the same key each detach their own predecessor; an entry can never
	// leave the store with its property-change wiring still live.
	ent := d.newAttachedEntry(key, value)
	var displaced *entry[V]
	inserted := false
	d.store.Compute(key, func(cur *entry[V], loaded bool) (*entry[V], xsync.ComputeOp) {
		if !loaded {
			inserted = true
			return ent, xsync.UpdateOp
		}
		if d.valueEqual(cur.value, value) {
			return cur, xsync.CancelOp
		}
		displaced = cur
		return ent, xsync.UpdateOp
	})

	if inserted {
		d.metrics.RecordMutation("add")
		d.metrics.RecordSize(d.store.Size())

		return d.emitItem(types.NewItemAdded(key, value))
	}

	if displaced == nil {
		// Nothing changed; discard the fresh wiring.
		ent.detach()
		return nil
	}

	displaced.detach()
	d.metrics.RecordMutation("replace")

	return d.emitItem(types.NewItemValueReplaced(key, value, displaced.value))
}

// Set is the indexer-style spelling of AddOrUpdate.
func (d *Dictionary[K, V]) Set(key K, value V) error {
	return d.AddOrUpdate(key, value)
}

// TryUpdate replaces the value of an existing key.
//
// Returns:
//   - bool: true if the key existed (including when the new value equalled
//     the stored one and nothing was emitted), false if the key was absent
//   - error: ErrNilKey / ErrClosed on contract violations, or an unhandled
//     observer error raised during notification delivery
func (d *Dictionary[K, V]) TryUpdate(key K, value V) (bool, error) {
	if err := d.guard(key); err != nil {
		return false, err
	}

	// Same atomic swap as AddOrUpdate, minus the insert branch: only the
	// entry Compute actually displaced gets detached.
	ent := d.newAttachedEntry(key, value)
	var displaced *entry[V]
	existed := false
	d.store.Compute(key, func(cur *entry[V], loaded bool) (*entry[V], xsync.ComputeOp) {
		if !loaded {
			return cur, xsync.CancelOp
		}
		existed = true
		if d.valueEqual(cur.value, value) {
			return cur, xsync.CancelOp
		}
		displaced = cur
		return ent, xsync.UpdateOp
	})

	if displaced == nil {
		ent.detach()
		return existed, nil
	}

	displaced.detach()
	d.metrics.RecordMutation("replace")

	return true, d.emitItem(types.NewItemValueReplaced(key, value, displaced.value))
}

// Remove removes the key and its value.
//
// Returns:
//   - bool: true if the key was present and removed, false if it was absent
//     (no side effects in that case)
//   - error: ErrNilKey / ErrClosed on contract violations, or an unhandled
//     observer error raised during notification delivery
func (d *Dictionary[K, V]) Remove(key K) (bool, error) {
	_, removed, err := d.TryRemove(key)
	return removed, err
}

// TryRemove removes the key and returns the value it held.
//
// Returns:
//   - V: The removed value, or the zero value if the key was absent
//   - bool: true if the key was present and removed
//   - error: ErrNilKey / ErrClosed on contract violations, or an unhandled
//     observer error raised during notification delivery
func (d *Dictionary[K, V]) TryRemove(key K) (V, bool, error) {
	var zero V
	if err := d.guard(key); err != nil {
		return zero, false, err
	}

	ent, loaded := d.store.LoadAndDelete(key)
	if !loaded {
		return zero, false, nil
	}

	// Detach synchronously, before emission: a property change of the
	// departed pair must never reach subscribers, even if external code
	// mutates it immediately after observing the removal.
	ent.detach()
	d.metrics.RecordMutation("remove")
	d.metrics.RecordSize(d.store.Size())

	return ent.value, true, d.emitItem(types.NewItemRemoved(key, ent.value))
}

// Clear removes all entries and detaches all property-change listeners.
//
// Exactly one Reset is emitted if the dictionary was non-empty; clearing an
// already-empty dictionary emits nothing.
//
// Returns:
//   - error: ErrClosed, or an unhandled observer error raised during
//     notification delivery
func (d *Dictionary[K, V]) Clear() error {
	if d.closed.Load() {
		return ErrClosed
	}

	removed := d.detachAndClear()
	if removed == 0 {
		return nil
	}

	d.metrics.RecordMutation("clear")
	d.metrics.RecordSize(d.store.Size())

	return d.emit(types.NewReset[K, V]())
}

// Reset emits a Reset notification without touching the stored entries,
// instructing subscribers to discard incremental knowledge and re-read.
//
// The signal is emitted unconditionally (even when empty), but only while
// reset tracking is enabled; with resets suppressed, Reset is a no-op.
//
// Returns:
//   - error: ErrClosed, or an unhandled observer error raised during
//     notification delivery
func (d *Dictionary[K, V]) Reset() error {
	if d.closed.Load() {
		return ErrClosed
	}
	if !d.gates.Resets.Enabled() {
		return nil
	}

	return d.emit(types.NewReset[K, V]())
}

// Get returns the value stored for key.
//
// Returns:
//   - V: The stored value, or the zero value if absent
//   - bool: true if the key is present
func (d *Dictionary[K, V]) Get(key K) (V, bool) {
	return d.lookup(key)
}

// ContainsKey reports whether key is present.
func (d *Dictionary[K, V]) ContainsKey(key K) bool {
	_, ok := d.store.Load(key)
	return ok
}

// Len returns the current number of entries. The count is read from the
// store on every call, never cached.
func (d *Dictionary[K, V]) Len() int {
	return d.store.Size()
}

// IsEmpty reports whether the dictionary holds no entries.
func (d *Dictionary[K, V]) IsEmpty() bool {
	return d.store.Size() == 0
}

// Keys returns a snapshot of the current keys. Order is not significant.
func (d *Dictionary[K, V]) Keys() []K {
	keys := make([]K, 0, d.store.Size())
	d.store.Range(func(key K, _ *entry[V]) bool {
		keys = append(keys, key)
		return true
	})

	return keys
}

// Values returns a snapshot of the current values. Order is not significant.
func (d *Dictionary[K, V]) Values() []V {
	values := make([]V, 0, d.store.Size())
	d.store.Range(func(_ K, ent *entry[V]) bool {
		values = append(values, ent.value)
		return true
	})

	return values
}

// KeyValuePairs returns a snapshot of the current entries. Order is not
// significant.
func (d *Dictionary[K, V]) KeyValuePairs() []types.KeyValuePair[K, V] {
	pairs := make([]types.KeyValuePair[K, V], 0, d.store.Size())
	d.store.Range(func(key K, ent *entry[V]) bool {
		pairs = append(pairs, types.KeyValuePair[K, V]{Key: key, Value: ent.value})
		return true
	})

	return pairs
}

// Range calls fn for every entry until fn returns false. Entries added or
// removed concurrently may or may not be visited.
func (d *Dictionary[K, V]) Range(fn func(key K, value V) bool) {
	d.store.Range(func(key K, ent *entry[V]) bool {
		return fn(key, ent.value)
	})
}

// ResetThreshold returns the current reset-coalescing threshold.
func (d *Dictionary[K, V]) ResetThreshold() int {
	return int(d.resetThreshold.Load())
}

// SetResetThreshold changes the reset-coalescing threshold. The new value
// applies to subsequent operations; bulk operations already in flight keep
// the threshold they started with.
//
// Returns:
//   - error: ErrInvalidThreshold for negative values, ErrClosed after Close
func (d *Dictionary[K, V]) SetResetThreshold(threshold int) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if threshold < 0 {
		return ErrInvalidThreshold
	}

	d.resetThreshold.Store(int64(threshold))

	return nil
}

// IsClosed reports whether Close has been called.
func (d *Dictionary[K, V]) IsClosed() bool {
	return d.closed.Load()
}

// Close permanently shuts the dictionary down: all property-change
// listeners are detached, the store is cleared, and every subscriber
// channel is closed. Any operation after Close fails with ErrClosed.
//
// Close is idempotent; concurrent and repeated calls are safe and return
// nil.
//
// Returns:
//   - error: Always nil; the signature allows Dictionary to satisfy
//     io.Closer
func (d *Dictionary[K, V]) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}

	d.detachAndClear()
	d.broadcaster.Close()
	d.metrics.RecordSize(0)
	d.logger.Debug("dictionary closed")

	return nil
}

// DictionaryChanges returns the stream of every change record, together
// with an unsubscribe function.
//
// The channel is buffered (Config.ChannelBufferSize); a full buffer drops
// notifications for this subscriber only. After Close (or when called on a
// closed dictionary) the channel is closed, which receivers observe as a
// completed stream.
func (d *Dictionary[K, V]) DictionaryChanges() (<-chan types.Change[K, V], func()) {
	return d.broadcaster.SubscribeChanges()
}

// KeyChanges returns the change stream filtered to in-place key property
// changes.
func (d *Dictionary[K, V]) KeyChanges() (<-chan types.Change[K, V], func()) {
	return d.broadcaster.SubscribeKeyChanges()
}

// ValueChanges returns the change stream filtered to in-place value property
// changes and value replacements.
func (d *Dictionary[K, V]) ValueChanges() (<-chan types.Change[K, V], func()) {
	return d.broadcaster.SubscribeValueChanges()
}

// Resets returns the stream of reset signals.
func (d *Dictionary[K, V]) Resets() (<-chan struct{}, func()) {
	return d.broadcaster.SubscribeResets()
}

// CountChanges returns the stream of entry counts, emitted after every
// count-affecting change and de-duplicated against the previously emitted
// count.
func (d *Dictionary[K, V]) CountChanges() (<-chan int, func()) {
	return d.broadcaster.SubscribeCount()
}

// CollectionChanges returns the collection-shaped projection of the change
// stream.
func (d *Dictionary[K, V]) CollectionChanges() (<-chan types.CollectionChange[K, V], func()) {
	return d.broadcaster.SubscribeCollectionChanges()
}

// CollectionItemChanges returns the collection-shaped projection filtered to
// item-level entries (resets excluded).
func (d *Dictionary[K, V]) CollectionItemChanges() (<-chan types.CollectionChange[K, V], func()) {
	return d.broadcaster.SubscribeCollectionItemChanges()
}

// ObserverErrors returns the stream of packaged observer panics.
func (d *Dictionary[K, V]) ObserverErrors() (<-chan *types.ObserverError, func()) {
	return d.broadcaster.SubscribeObserverErrors()
}

// OnPropertyChanged registers a legacy property-changed handler, fired with
// PropertyCount after count-affecting changes and PropertyIndexer after
// every change. The handler runs on the configured scheduler.
//
// Returns:
//   - func(): Removes the handler; idempotent
func (d *Dictionary[K, V]) OnPropertyChanged(handler func(propertyName string)) (remove func()) {
	return d.broadcaster.OnPropertyChanged(handler)
}

// OnCollectionChanged registers a legacy collection-changed handler, fired
// once per collection-shaped change descriptor. The handler runs on the
// configured scheduler.
//
// Returns:
//   - func(): Removes the handler; idempotent
func (d *Dictionary[K, V]) OnCollectionChanged(handler func(types.CollectionChange[K, V])) (remove func()) {
	return d.broadcaster.OnCollectionChanged(handler)
}

// OnObserverError registers a handler for packaged observer panics. The
// handler runs synchronously during delivery; calling MarkHandled on the
// received error absorbs the failure so it is not returned from the
// triggering mutation.
//
// Returns:
//   - func(): Removes the handler; idempotent
func (d *Dictionary[K, V]) OnObserverError(handler func(*types.ObserverError)) (remove func()) {
	return d.broadcaster.OnObserverError(handler)
}

// newAttachedEntry wires the pair into the property-change forwarder and
// returns the entry holding the detach handles. Wiring happens before the
// entry becomes visible, so by the time any subscriber observes a change the
// dictionary's internal wiring is already consistent.
func (d *Dictionary[K, V]) newAttachedEntry(key K, value V) *entry[V] {
	return &entry[V]{
		value:       value,
		detachKey:   d.forwarder.AttachKey(key),
		detachValue: d.forwarder.AttachValue(key, value),
	}
}

// detachAndClear removes every entry, detaching its listeners, and returns
// the number of entries removed.
func (d *Dictionary[K, V]) detachAndClear() int {
	removed := 0
	d.store.Range(func(key K, _ *entry[V]) bool {
		if ent, loaded := d.store.LoadAndDelete(key); loaded {
			ent.detach()
			removed++
		}
		return true
	})

	return removed
}

// emit funnels one change into the broadcaster with the store's current
// count.
func (d *Dictionary[K, V]) emit(c types.Change[K, V]) error {
	return d.broadcaster.Emit(c, d.store.Size())
}

// emitItem emits a single-item change, first running it through the
// reset-coalescing policy: a threshold of 0 collapses even singular changes
// into a Reset. While resets are suppressed the policy never fires and the
// discrete change goes out as-is.
func (d *Dictionary[K, V]) emitItem(c types.Change[K, V]) error {
	if d.gates.Resets.Enabled() && coalesce.ShouldReset(1, d.ResetThreshold()) {
		c = types.NewReset[K, V]()
	}

	return d.emit(c)
}

// lookup resolves a key to its current value.
func (d *Dictionary[K, V]) lookup(key K) (V, bool) {
	if ent, ok := d.store.Load(key); ok {
		return ent.value, true
	}

	var zero V
	return zero, false
}

// guard rejects operations on a closed dictionary and nil keys.
func (d *Dictionary[K, V]) guard(key K) error {
	if d.closed.Load() {
		return ErrClosed
	}
	if isNilKey(key) {
		return ErrNilKey
	}

	return nil
}

// isNilKey reports whether key is a nil pointer or nil interface. Zero
// values of non-reference types (0, "") are legitimate keys.
func isNilKey[K comparable](key K) bool {
	switch rv := reflect.ValueOf(&key).Elem(); rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
